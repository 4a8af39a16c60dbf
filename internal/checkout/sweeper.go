package checkout

import (
	"context"
	"time"

	"lunchbox-be/internal/logger"

	"go.uber.org/zap"
)

// Sweeper periodically moves stale OPEN intents to EXPIRED. This is advisory
// cleanup, not a hard cancellation: a payment can still complete after the
// TTL and lands in the reconciler's anomaly branch.
type Sweeper struct {
	svc      Service
	interval time.Duration
}

func NewSweeper(svc Service, interval time.Duration) *Sweeper {
	return &Sweeper{svc: svc, interval: interval}
}

func (s *Sweeper) Run(ctx context.Context) {
	log := logger.L().With(zap.String("worker", "intent_sweeper"))
	log.Info("sweeper started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("sweeper stopped")
			return
		case <-ticker.C:
			n, err := s.svc.ExpireStale(ctx)
			if err != nil {
				log.Error("failed to expire stale intents", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("expired stale intents", zap.Int64("count", n))
			}
		}
	}
}
