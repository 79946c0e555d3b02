package http_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	handler "github.com/ontoptea/orderhub/internal/adapter/handler/http"
	"github.com/ontoptea/orderhub/internal/core/domain"
	"github.com/ontoptea/orderhub/internal/core/port"
	"github.com/ontoptea/orderhub/internal/core/port/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newOrderHandler(t *testing.T, svc port.OrderService) *handler.OrderHandler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	oh, err := handler.NewOrderHandler(svc, zap.NewNop())
	require.NoError(t, err)
	return oh
}

func doGet(oh *handler.OrderHandler, handle gin.HandlerFunc, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest("GET", target, nil)
	handle(ctx)
	return w
}

func TestOrderHandler_ListOrders_UserFilter(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	svc := mock.NewMockOrderService(mockCtrl)

	var captured port.ListOrdersRequest
	svc.EXPECT().ListOrders(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req port.ListOrdersRequest) (*port.OrderPage, error) {
			captured = req
			return &port.OrderPage{List: []*domain.Order{}, Page: req.Page, PageSize: req.PageSize}, nil
		})

	oh := newOrderHandler(t, svc)
	w := doGet(oh, oh.ListOrders, "/api/orders?userId=42&requestType=admin")

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, uint64(42), captured.UserID)
	assert.Equal(t, port.RequestTypeAdmin, captured.RequestType)
}

func TestOrderHandler_ExportOrders_RequestType(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	tests := []struct {
		name    string
		target  string
		expType port.RequestType
	}{
		{
			name:    "explicit request type flows through",
			target:  "/api/orders/export?requestType=admin",
			expType: port.RequestTypeAdmin,
		},
		{
			name:    "defaults to the frontend window",
			target:  "/api/orders/export",
			expType: port.RequestTypeFrontend,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			svc := mock.NewMockOrderService(mockCtrl)

			var captured port.ListOrdersRequest
			svc.EXPECT().ListOrders(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, req port.ListOrdersRequest) (*port.OrderPage, error) {
					captured = req
					return &port.OrderPage{
						List: []*domain.Order{{
							Number: "250801120000123",
							Items:  []domain.OrderItem{{Name: "Green Tea", Quantity: 2}},
							Status: domain.OrderStatusCompleted,
						}},
						Total: 1,
					}, nil
				})

			oh := newOrderHandler(t, svc)
			w := doGet(oh, oh.ExportOrders, test.target)

			assert.Equal(t, 200, w.Code)
			assert.Equal(t, test.expType, captured.RequestType)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")

			lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
			require.Len(t, lines, 2)
			assert.Contains(t, lines[1], "250801120000123")
			assert.Contains(t, lines[1], "Green Tea")
		})
	}
}
