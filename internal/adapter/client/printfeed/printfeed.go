package printfeed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ontoptea/orderhub/internal/adapter/config"
	"github.com/ontoptea/orderhub/internal/core/domain"
	"github.com/ontoptea/orderhub/internal/core/port"
	"go.uber.org/zap"
)

const (
	dialTimeout    = 10 * time.Second
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Subscriber keeps one persistent socket to the order server, joins the
// print-client room and feeds incoming print jobs to the configured printer.
// A failed job falls back to the plain-text printer; nothing short of ctx
// cancellation stops the loop.
type Subscriber struct {
	logger   *zap.Logger
	url      string
	printer  port.Printer
	fallback port.Printer
}

func NewSubscriber(cfg *config.PrintClient, printer, fallback port.Printer, logger *zap.Logger) (*Subscriber, error) {
	return &Subscriber{
		logger:   logger,
		url:      cfg.ServerURL,
		printer:  printer,
		fallback: fallback,
	}, nil
}

// Run dials, consumes and redials with bounded exponential backoff until
// ctx is cancelled. Missed-event recovery is out of scope: jobs published
// while the client was offline are gone, the order store has the truth.
func (s *Subscriber) Run(ctx context.Context) error {
	backoff := initialBackoff

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, err := s.dial(ctx)
		if err != nil {
			s.logger.Warn("Connect to order server",
				zap.String("url", s.url),
				zap.Duration("retry_in", backoff),
				zap.Error(err))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}

		s.logger.Info("Connected to order server", zap.String("url", s.url))
		backoff = initialBackoff

		// ReadJSON has no ctx awareness, closing the socket unblocks it.
		stop := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				_ = conn.Close()
			case <-stop:
			}
		}()

		err = s.consume(conn)
		close(stop)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("Connection lost, reconnecting", zap.Error(err))
	}
}

func (s *Subscriber) dial(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, s.url, nil)
	if err != nil {
		return nil, err
	}

	join := map[string]string{"action": "join", "room": domain.RoomPrintClient}
	if err := conn.WriteJSON(join); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return conn, nil
}

func (s *Subscriber) consume(conn *websocket.Conn) error {
	for {
		var event domain.NotificationEvent
		if err := conn.ReadJSON(&event); err != nil {
			return err
		}

		if event.Type != domain.EventPrintJob {
			s.logger.Debug("Ignoring event", zap.String("type", string(event.Type)))
			continue
		}

		var job domain.PrintJob
		if err := json.Unmarshal(event.Data, &job); err != nil {
			s.logger.Error("Unparsable print job", zap.Error(err))
			continue
		}

		s.handleJob(&job)
	}
}

// handleJob never fails the loop: a broken printer must not take the
// client down, the next job may still succeed.
func (s *Subscriber) handleJob(job *domain.PrintJob) {
	if job.Order == nil {
		s.logger.Error("Print job without an order, skipped")
		return
	}

	s.logger.Info("Print job received", zap.String("order", job.Order.Number))

	err := s.printer.Print(job)
	if err == nil {
		return
	}
	s.logger.Error("Primary printer failed, using fallback",
		zap.String("order", job.Order.Number),
		zap.Error(err))

	if err := s.fallback.Print(job); err != nil {
		s.logger.Error("Fallback printer failed, job lost",
			zap.String("order", job.Order.Number),
			zap.Error(err))
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
