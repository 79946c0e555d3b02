package domain

import "time"

// Principal is the owner of an order. Anonymous checkouts get a guest
// principal provisioned on the fly, so every order has a valid owner id.
type Principal struct {
	ID        uint64
	Username  string
	Nickname  string
	Guest     bool
	SessionID string
	CreatedAt time.Time
}
