package domain_test

import (
	"testing"
	"time"

	"github.com/ontoptea/orderhub/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	tests := []struct {
		in       string
		expected domain.OrderStatus
		fails    bool
	}{
		{in: "pending", expected: domain.OrderStatusPending},
		{in: "making", expected: domain.OrderStatusMaking},
		{in: "preparing", expected: domain.OrderStatusMaking},
		{in: "ready", expected: domain.OrderStatusReady},
		{in: "completed", expected: domain.OrderStatusCompleted},
		{in: "cancelled", expected: domain.OrderStatusCancelled},
		{in: "shipped", fails: true},
		{in: "", fails: true},
	}

	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			status, err := domain.ParseOrderStatus(test.in)
			if test.fails {
				assert.ErrorIs(t, err, domain.ErrBadOrderStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expected, status)
		})
	}
}

func TestCanTransition(t *testing.T) {
	allowed := [][2]domain.OrderStatus{
		{domain.OrderStatusPending, domain.OrderStatusMaking},
		{domain.OrderStatusPending, domain.OrderStatusCancelled},
		{domain.OrderStatusMaking, domain.OrderStatusReady},
		{domain.OrderStatusMaking, domain.OrderStatusCancelled},
		{domain.OrderStatusReady, domain.OrderStatusCompleted},
		{domain.OrderStatusReady, domain.OrderStatusCancelled},
	}
	for _, pair := range allowed {
		assert.True(t, domain.CanTransition(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}

	denied := [][2]domain.OrderStatus{
		{domain.OrderStatusPending, domain.OrderStatusReady},
		{domain.OrderStatusPending, domain.OrderStatusCompleted},
		{domain.OrderStatusMaking, domain.OrderStatusCompleted},
		{domain.OrderStatusCompleted, domain.OrderStatusMaking},
		{domain.OrderStatusCancelled, domain.OrderStatusPending},
		{domain.OrderStatusCompleted, domain.OrderStatusCancelled},
	}
	for _, pair := range denied {
		assert.False(t, domain.CanTransition(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	assert.True(t, domain.OrderStatusCompleted.Terminal())
	assert.True(t, domain.OrderStatusCancelled.Terminal())
	assert.False(t, domain.OrderStatusPending.Terminal())
	assert.False(t, domain.OrderStatusMaking.Terminal())
	assert.False(t, domain.OrderStatusReady.Terminal())
}

func TestNewOrderNumber(t *testing.T) {
	now := time.Date(2025, 8, 1, 12, 30, 45, 0, time.Local)

	number := domain.NewOrderNumber(now)

	require.Len(t, number, 15)
	assert.Equal(t, "250801123045", number[:12])
	assert.Regexp(t, `^\d{15}$`, number)
}
