package service

import (
	"fmt"
	"strings"

	"github.com/ontoptea/orderhub/internal/core/domain"
)

const (
	receiptDivider = "========================"
	receiptWidth   = 32

	shopNameLine1 = "ON TOP"
	shopNameLine2 = "TEA BREAK"
)

// RenderReceipt lays out the fixed-width plain-text ticket that both the
// server-side text printer and the remote print clients use.
func RenderReceipt(order *domain.Order) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(receiptDivider + "\n")
	b.WriteString(centerLine(shopNameLine1) + "\n")
	b.WriteString(centerLine(shopNameLine2) + "\n")
	b.WriteString(receiptDivider + "\n")

	b.WriteString(spreadLine("Order No:", order.Number) + "\n")
	b.WriteString(receiptDivider + "\n")

	b.WriteString("Items\n")
	b.WriteString(receiptDivider + "\n")
	for _, item := range order.Items {
		name := item.Name
		if name == "" {
			name = "Unknown item"
		}
		fmt.Fprintf(&b, "%s  X%d\n", name, item.Quantity)
		if item.SpecText != "" {
			fmt.Fprintf(&b, "%s\n", item.SpecText)
		}
	}
	b.WriteString(receiptDivider + "\n")

	b.WriteString("Remark:\n")
	remark := order.Remark
	if remark == "" {
		remark = "-"
	}
	b.WriteString(remark + "\n")
	b.WriteString(receiptDivider + "\n")

	b.WriteString(spreadLine("Time:", order.CreatedAt.Format("2006-01-02 15:04:05")) + "\n")
	b.WriteString("\n\n\n")

	return b.String()
}

func centerLine(s string) string {
	pad := (receiptWidth - len(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}

// spreadLine pushes the value to the right edge of the ticket.
func spreadLine(label, value string) string {
	pad := receiptWidth - len(label) - len(value)
	if pad < 1 {
		pad = 1
	}
	return label + strings.Repeat(" ", pad) + value
}
