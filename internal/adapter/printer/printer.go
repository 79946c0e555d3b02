package printer

import (
	"fmt"

	"github.com/ontoptea/orderhub/internal/adapter/config"
	"github.com/ontoptea/orderhub/internal/core/port"
	"go.uber.org/zap"
)

const (
	TypeEscPosUSB     = "escpos-usb"
	TypeEscPosNetwork = "escpos-network"
	TypeText          = "txt"
)

// NewPrinter selects the printer backend from configuration. There is no
// runtime probing: the operator states what is attached.
func NewPrinter(cfg *config.PrintClient, logger *zap.Logger) (port.Printer, error) {
	switch cfg.PrinterType {
	case TypeEscPosUSB:
		return NewEscPosUSBPrinter(cfg.DevicePath, logger), nil
	case TypeEscPosNetwork:
		return NewEscPosNetworkPrinter(cfg.NetworkAddr, logger), nil
	case TypeText:
		return NewTextPrinter(cfg.OutputDir, logger), nil
	}
	return nil, fmt.Errorf("unknown printer type %q", cfg.PrinterType)
}
