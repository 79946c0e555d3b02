package printer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ontoptea/orderhub/internal/core/domain"
	"go.uber.org/zap"
)

// TextPrinter drops the rendered ticket into a directory as a plain file.
// It is the fallback path when no physical printer responds.
type TextPrinter struct {
	logger *zap.Logger
	dir    string
}

func NewTextPrinter(dir string, logger *zap.Logger) *TextPrinter {
	return &TextPrinter{logger: logger, dir: dir}
}

func (p *TextPrinter) Print(job *domain.PrintJob) error {
	path := filepath.Join(p.dir, fmt.Sprintf("order_%s.txt", job.Order.Number))
	if err := os.WriteFile(path, []byte(job.Content), 0o644); err != nil {
		return fmt.Errorf("write ticket file: %w", err)
	}

	p.logger.Info("Ticket written to file",
		zap.String("order", job.Order.Number),
		zap.String("path", path))
	return nil
}
