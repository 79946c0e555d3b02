package service_test

import (
	"strings"
	"testing"
	"time"

	"github.com/ontoptea/orderhub/internal/core/domain"
	"github.com/ontoptea/orderhub/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderReceipt(t *testing.T) {
	created := time.Date(2025, 8, 1, 12, 30, 45, 0, time.UTC)
	order := &domain.Order{
		Number:    "250801123045123",
		Remark:    "less ice please",
		CreatedAt: created,
		Items: []domain.OrderItem{
			{Name: "Green Tea", Quantity: 2, SpecText: "Temperature: Iced"},
			{Name: "Ginger Milk", Quantity: 1},
		},
	}

	receipt := service.RenderReceipt(order)
	lines := strings.Split(receipt, "\n")

	assert.Contains(t, receipt, "ON TOP")
	assert.Contains(t, receipt, "TEA BREAK")
	assert.Contains(t, receipt, "Green Tea  X2")
	assert.Contains(t, receipt, "Temperature: Iced")
	assert.Contains(t, receipt, "Ginger Milk  X1")
	assert.Contains(t, receipt, "less ice please")
	assert.Contains(t, receipt, "2025-08-01 12:30:45")

	// The order number sits on one line with its label, value pushed right.
	var numberLine string
	for _, line := range lines {
		if strings.HasPrefix(line, "Order No:") {
			numberLine = line
		}
	}
	require.NotEmpty(t, numberLine)
	assert.True(t, strings.HasSuffix(numberLine, order.Number))

	// Divider rules frame every block.
	dividers := strings.Count(receipt, "========================")
	assert.Equal(t, 6, dividers)
}

func TestRenderReceipt_Defaults(t *testing.T) {
	order := &domain.Order{
		Number:    "250801123045123",
		CreatedAt: time.Now(),
		Items:     []domain.OrderItem{{Quantity: 1}},
	}

	receipt := service.RenderReceipt(order)

	assert.Contains(t, receipt, "Unknown item  X1")
	assert.Contains(t, receipt, "Remark:\n-\n")
}
