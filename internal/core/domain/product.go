package domain

import (
	"time"

	"github.com/govalues/decimal"
)

type Product struct {
	ID        uint64
	Name      string
	Image     string
	Category  string
	Price     decimal.Decimal
	Stock     int
	Available bool
	UpdatedAt time.Time
}
