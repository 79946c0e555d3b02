package printer

import (
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/ontoptea/orderhub/internal/core/domain"
	"go.uber.org/zap"
)

const dialTimeout = 5 * time.Second

// Raw ESC/POS command sequences.
var (
	escInit      = []byte{0x1b, 0x40}             // initialize printer
	escAlignMid  = []byte{0x1b, 0x61, 0x01}       // center alignment
	escAlignLeft = []byte{0x1b, 0x61, 0x00}       // left alignment
	escCut       = []byte{0x1d, 0x56, 0x41, 0x00} // feed and full cut
)

// EscPosPrinter writes raw ESC/POS to a device opened per job, either a USB
// character device or a network printer port.
type EscPosPrinter struct {
	logger *zap.Logger
	target string
	open   func() (io.WriteCloser, error)
}

func NewEscPosUSBPrinter(devicePath string, logger *zap.Logger) *EscPosPrinter {
	return &EscPosPrinter{
		logger: logger,
		target: devicePath,
		open: func() (io.WriteCloser, error) {
			return os.OpenFile(devicePath, os.O_WRONLY, 0)
		},
	}
}

func NewEscPosNetworkPrinter(addr string, logger *zap.Logger) *EscPosPrinter {
	return &EscPosPrinter{
		logger: logger,
		target: addr,
		open: func() (io.WriteCloser, error) {
			return net.DialTimeout("tcp", addr, dialTimeout)
		},
	}
}

func (p *EscPosPrinter) Print(job *domain.PrintJob) error {
	device, err := p.open()
	if err != nil {
		return fmt.Errorf("open printer %s: %w", p.target, err)
	}
	defer func() { _ = device.Close() }()

	// The rendered ticket already carries its layout; the device only needs
	// init, alignment and the cut sequence around it.
	for _, chunk := range [][]byte{escInit, escAlignLeft, []byte(job.Content), escAlignMid, escCut} {
		if _, err := device.Write(chunk); err != nil {
			return fmt.Errorf("write to printer %s: %w", p.target, err)
		}
	}

	p.logger.Info("Ticket printed",
		zap.String("order", job.Order.Number),
		zap.String("device", p.target))
	return nil
}
