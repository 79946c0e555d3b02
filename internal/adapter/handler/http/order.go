package http

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/govalues/decimal"
	"github.com/ontoptea/orderhub/internal/core/domain"
	"github.com/ontoptea/orderhub/internal/core/port"
	"go.uber.org/zap"
)

type OrderHandler struct {
	Handler
	service port.OrderService
}

func NewOrderHandler(service port.OrderService, logger *zap.Logger) (*OrderHandler, error) {
	return &OrderHandler{
		Handler: *NewHandler(logger),
		service: service,
	}, nil
}

type orderItemRequest struct {
	ProductID uint64 `json:"productId"`
	Quantity  int    `json:"quantity"`
	Specs     *struct {
		Selected map[string][]uint64 `json:"selected"`
	} `json:"specs,omitempty"`
}

type createOrderRequest struct {
	UserID         uint64             `json:"userId,omitempty"`
	SessionID      string             `json:"sessionId"`
	Items          []orderItemRequest `json:"items"`
	Remark         string             `json:"remark,omitempty"`
	DiscountAmount float64            `json:"discountAmount,omitempty"`
}

func (oh *OrderHandler) CreateOrder(ctx *gin.Context) {
	req := createOrderRequest{}
	err := ctx.ShouldBindBodyWithJSON(&req)
	if err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	discount, err := decimal.NewFromFloat64(req.DiscountAmount)
	if err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	items := make([]port.CreateOrderItem, 0, len(req.Items))
	for _, reqItem := range req.Items {
		item := port.CreateOrderItem{
			ProductID: reqItem.ProductID,
			Quantity:  reqItem.Quantity,
		}
		if reqItem.Specs != nil {
			item.Specs = parseSpecSelection(reqItem.Specs.Selected)
		}
		items = append(items, item)
	}

	order, err := oh.service.CreateOrder(ctx, port.CreateOrderRequest{
		UserID:         req.UserID,
		SessionID:      req.SessionID,
		Items:          items,
		Remark:         req.Remark,
		DiscountAmount: discount,
	})
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccessWithStatus(ctx, order, http.StatusCreated)
}

// parseSpecSelection converts the wire form (string group keys) into ids.
// Unparsable keys are skipped, matching the lenient spec resolution.
func parseSpecSelection(selected map[string][]uint64) domain.SpecSelection {
	if len(selected) == 0 {
		return nil
	}
	selection := make(domain.SpecSelection, len(selected))
	for key, itemIDs := range selected {
		groupID, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			continue
		}
		selection[groupID] = itemIDs
	}
	return selection
}

type orderPageResponse struct {
	List     []*domain.Order `json:"list"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

func (oh *OrderHandler) ListOrders(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("pageSize", "20"))
	userID, _ := strconv.ParseUint(ctx.Query("userId"), 10, 64)

	result, err := oh.service.ListOrders(ctx, port.ListOrdersRequest{
		RequestType: port.RequestType(ctx.DefaultQuery("requestType", string(port.RequestTypeFrontend))),
		SessionID:   ctx.Query("sessionId"),
		UserID:      userID,
		Status:      ctx.Query("status"),
		Page:        page,
		PageSize:    pageSize,
	})
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, orderPageResponse{
		List:     result.List,
		Total:    result.Total,
		Page:     result.Page,
		PageSize: result.PageSize,
	})
}

func (oh *OrderHandler) GetOrder(ctx *gin.Context) {
	orderID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	order, err := oh.service.GetOrder(ctx, orderID)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, order)
}

type cancelOrderRequest struct {
	SessionID string `json:"sessionId,omitempty"`
}

func (oh *OrderHandler) CancelOrder(ctx *gin.Context) {
	orderID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	req := cancelOrderRequest{}
	// Body is optional: admins cancel without a session token.
	_ = ctx.ShouldBindBodyWithJSON(&req)

	order, err := oh.service.CancelOrder(ctx, orderID, req.SessionID)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, order)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (oh *OrderHandler) UpdateStatus(ctx *gin.Context) {
	orderID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	req := updateStatusRequest{}
	err = ctx.ShouldBindBodyWithJSON(&req)
	if err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	order, err := oh.service.UpdateStatus(ctx, orderID, status)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, order)
}

// ExportOrders streams the current listing as a CSV report, one row per
// order line item.
func (oh *OrderHandler) ExportOrders(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("pageSize", "10000"))
	userID, _ := strconv.ParseUint(ctx.Query("userId"), 10, 64)

	result, err := oh.service.ListOrders(ctx, port.ListOrdersRequest{
		RequestType: port.RequestType(ctx.DefaultQuery("requestType", string(port.RequestTypeFrontend))),
		SessionID:   ctx.Query("sessionId"),
		UserID:      userID,
		Status:      ctx.Query("status"),
		Page:        page,
		PageSize:    pageSize,
	})
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	ctx.Header("Content-Type", "text/csv")
	ctx.Header("Content-Disposition", `attachment; filename="orders.csv"`)

	w := csv.NewWriter(ctx.Writer)
	_ = w.Write([]string{"order_no", "item", "quantity", "amount", "status", "created_at", "remark"})
	for _, order := range result.List {
		for _, item := range order.Items {
			record := []string{
				order.Number,
				item.Name,
				strconv.Itoa(item.Quantity),
				fmt.Sprintf("%v", order.FinalAmount),
				string(order.Status),
				order.CreatedAt.Format("2006-01-02 15:04:05"),
				order.Remark,
			}
			if err := w.Write(record); err != nil {
				oh.logger.Error("write csv row", zap.Error(err))
				return
			}
		}
	}
	w.Flush()
}
