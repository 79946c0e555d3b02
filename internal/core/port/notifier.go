package port

import (
	"context"

	"github.com/ontoptea/orderhub/internal/core/domain"
)

//go:generate mockgen -source=notifier.go -destination=mock/notifier.go -package=mock
type Notifier interface {
	// Publish fans the event out to every member of the room. Delivery is
	// at-most-once: errors are for the caller's log only and never abort
	// the operation that triggered the event.
	Publish(ctx context.Context, room string, event domain.NotificationEvent) error

	// Broadcast delivers the event to every connected client, regardless
	// of room.
	Broadcast(ctx context.Context, event domain.NotificationEvent) error
}
