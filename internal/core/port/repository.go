package port

import (
	"context"
	"time"

	"github.com/ontoptea/orderhub/internal/core/domain"
)

// OrderFilter scopes ListOrders. Zero values mean "no filter";
// CreatedAfter trims the time window per request type.
type OrderFilter struct {
	SessionID    string
	Status       domain.OrderStatus
	CreatedAfter time.Time
	UserID       uint64
	Page         int
	PageSize     int
}

//go:generate mockgen -source=repository.go -destination=mock/repository.go -package=mock
type OrderRepository interface {
	// CreateOrder persists the order and decrements stock for every line item
	// in a single transaction. A conditional decrement that touches zero rows
	// aborts the whole transaction with domain.ErrInsufficientStock.
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	ReadOrder(ctx context.Context, orderID uint64) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uint64, status domain.OrderStatus) (*domain.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]*domain.Order, int, error)
	DeleteOrdersBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type InventoryRepository interface {
	ReadProduct(ctx context.Context, productID uint64) (*domain.Product, error)
	// RestoreStock adds quantity back and flips availability on when the
	// stock leaves zero.
	RestoreStock(ctx context.Context, productID uint64, quantity int) error
}

type SpecRepository interface {
	ReadSpecGroup(ctx context.Context, groupID uint64) (*domain.SpecGroup, error)
	ReadSpecItem(ctx context.Context, itemID uint64) (*domain.SpecItem, error)
}

type PrincipalRepository interface {
	ReadPrincipal(ctx context.Context, id uint64) (*domain.Principal, error)
	FindGuestBySession(ctx context.Context, sessionID string) (*domain.Principal, error)
	CreateGuest(ctx context.Context, guest *domain.Principal) (*domain.Principal, error)
}
