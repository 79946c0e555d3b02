package domain

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventNewOrder     EventType = "new-order"
	EventStatusChange EventType = "order-status-change"
	EventPrintJob     EventType = "print-order"
)

// Subscriber rooms. Production displays receive new orders, print clients
// receive print jobs. Status changes are broadcast to everyone.
const (
	RoomProduction  = "production"
	RoomPrintClient = "print-client"
)

// NotificationEvent is the wire envelope for the socket channel. Delivery is
// fire-and-forget: events are not persisted and a disconnected subscriber
// misses whatever was published while it was offline.
type NotificationEvent struct {
	Type      EventType       `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// PrintJob is the payload of an EventPrintJob event: the rendered receipt
// plus the order snapshot for clients that lay out their own tickets.
type PrintJob struct {
	Order   *Order `json:"order"`
	Content string `json:"printContent"`
}
