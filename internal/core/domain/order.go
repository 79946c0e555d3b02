package domain

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/govalues/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusMaking    OrderStatus = "making"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// "preparing" is a legacy alias of "making" kept on the wire for older clients.
const orderStatusPreparingAlias = "preparing"

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch s {
	case string(OrderStatusPending):
		return OrderStatusPending, nil
	case string(OrderStatusMaking), orderStatusPreparingAlias:
		return OrderStatusMaking, nil
	case string(OrderStatusReady):
		return OrderStatusReady, nil
	case string(OrderStatusCompleted):
		return OrderStatusCompleted, nil
	case string(OrderStatusCancelled):
		return OrderStatusCancelled, nil
	}
	return "", ErrBadOrderStatus
}

var statusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusMaking, OrderStatusCancelled},
	OrderStatusMaking:  {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:   {OrderStatusCompleted, OrderStatusCancelled},
}

// CanTransition reports whether a status change is legal.
// completed and cancelled are terminal states.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// OrderItem is a snapshot of a product at order time. Catalog edits after
// the order is placed never change it.
type OrderItem struct {
	ProductID uint64          `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Category  string          `json:"category,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	SpecText  string          `json:"specText,omitempty"`
}

type Order struct {
	ID             uint64          `json:"id"`
	Number         string          `json:"order_no"`
	UserID         uint64          `json:"user_id"`
	SessionID      string          `json:"session_id,omitempty"`
	Items          []OrderItem     `json:"items"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
	Remark         string          `json:"remark,omitempty"`
	Status         OrderStatus     `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewOrderNumber builds the human-facing order number: YYMMDDHHmmss plus a
// 3-digit random suffix. Collisions are possible within one second and are
// resolved by regenerating against the unique constraint.
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("%s%03d", now.Format("060102150405"), rand.Intn(1000))
}
