package printer_test

import (
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ontoptea/orderhub/internal/adapter/config"
	"github.com/ontoptea/orderhub/internal/adapter/printer"
	"github.com/ontoptea/orderhub/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testJob() *domain.PrintJob {
	return &domain.PrintJob{
		Order:   &domain.Order{Number: "250801120000123"},
		Content: "ticket body\n",
	}
}

func TestTextPrinter(t *testing.T) {
	dir := t.TempDir()
	p := printer.NewTextPrinter(dir, zap.NewNop())

	err := p.Print(testJob())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "order_250801120000123.txt"))
	require.NoError(t, err)
	assert.Equal(t, "ticket body\n", string(data))
}

func TestEscPosNetworkPrinter(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		data, _ := io.ReadAll(conn)
		received <- data
	}()

	p := printer.NewEscPosNetworkPrinter(listener.Addr().String(), zap.NewNop())
	require.NoError(t, p.Print(testJob()))

	select {
	case data := <-received:
		// Initialize sequence, the ticket text, then feed-and-cut.
		assert.Equal(t, []byte{0x1b, 0x40}, data[:2])
		assert.Contains(t, string(data), "ticket body")
		assert.Equal(t, []byte{0x1d, 0x56, 0x41, 0x00}, data[len(data)-4:])
	case <-time.After(3 * time.Second):
		t.Fatal("printer bytes never arrived")
	}
}

func TestEscPosNetworkPrinter_Unreachable(t *testing.T) {
	p := printer.NewEscPosNetworkPrinter("127.0.0.1:1", zap.NewNop())

	err := p.Print(testJob())
	assert.Error(t, err)
}

func TestNewPrinter_Selection(t *testing.T) {
	log := zap.NewNop()

	tests := []struct {
		printerType string
		fails       bool
	}{
		{printerType: printer.TypeEscPosUSB},
		{printerType: printer.TypeEscPosNetwork},
		{printerType: printer.TypeText},
		{printerType: "laser", fails: true},
	}

	for _, test := range tests {
		t.Run(test.printerType, func(t *testing.T) {
			p, err := printer.NewPrinter(&config.PrintClient{
				PrinterType: test.printerType,
				DevicePath:  "/dev/usb/lp0",
				NetworkAddr: "localhost:9100",
				OutputDir:   t.TempDir(),
			}, log)

			if test.fails {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, p)
		})
	}
}
