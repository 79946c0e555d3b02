package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StartRetentionSweeper deletes orders older than maxAge on a fixed interval,
// regardless of status. A zero maxAge disables the sweep entirely (permanent
// retention). The sweeper stops when ctx is cancelled.
func (s *Service) StartRetentionSweeper(ctx context.Context, interval, maxAge time.Duration) {
	if maxAge <= 0 {
		s.logger.Info("Order retention sweep disabled, orders kept permanently")
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweepExpiredOrders(ctx, maxAge)
			case <-ctx.Done():
				s.logger.Debug("Retention sweeper stopped")
				return
			}
		}
	}()
}

func (s *Service) sweepExpiredOrders(ctx context.Context, maxAge time.Duration) {
	cutoff := s.now().Add(-maxAge)
	deleted, err := s.orders.DeleteOrdersBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("Retention sweep", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Info("Retention sweep removed expired orders",
			zap.Int64("count", deleted),
			zap.Time("cutoff", cutoff))
	}
}
