package port

import (
	"context"

	"github.com/govalues/decimal"
	"github.com/ontoptea/orderhub/internal/core/domain"
)

// RequestType chooses the implicit time window of a listing.
type RequestType string

const (
	RequestTypeAdmin    RequestType = "admin"    // full history
	RequestTypeDisplay  RequestType = "display"  // last 24 hours, kitchen board
	RequestTypeFrontend RequestType = "frontend" // last 7 days, guest self-service
)

type CreateOrderItem struct {
	ProductID uint64
	Quantity  int
	Specs     domain.SpecSelection
}

type CreateOrderRequest struct {
	UserID         uint64 // zero for anonymous checkout
	SessionID      string
	Items          []CreateOrderItem
	Remark         string
	DiscountAmount decimal.Decimal
}

type ListOrdersRequest struct {
	RequestType RequestType
	SessionID   string
	UserID      uint64 // zero lists orders of every user
	Status      string
	Page        int
	PageSize    int
}

type OrderPage struct {
	List     []*domain.Order
	Total    int
	Page     int
	PageSize int
}

//go:generate mockgen -source=service.go -destination=mock/service.go -package=mock
type OrderService interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID uint64) (*domain.Order, error)
	ListOrders(ctx context.Context, req ListOrdersRequest) (*OrderPage, error)
	CancelOrder(ctx context.Context, orderID uint64, sessionID string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID uint64, status domain.OrderStatus) (*domain.Order, error)
}
