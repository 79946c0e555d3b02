package domain

import (
	"errors"
)

var (
	ErrInternal = errors.New("internal error")

	// * Data errors.
	ErrDataNotFound    = errors.New("data not found")
	ErrConflictingData = errors.New("data conflicts with existing data in unique column")

	// * Communication errors.
	ErrBadRequest = errors.New("error parsing request")

	// * Business errors.
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("product stock is not enough")
	ErrOrderNotFound     = errors.New("order not found")
	ErrForbidden         = errors.New("order belongs to another session")
	ErrInvalidTransition = errors.New("order status transition is not allowed")
	ErrBadOrderStatus    = errors.New("unknown order status")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrBadQuantity       = errors.New("item quantity must be positive")
)
