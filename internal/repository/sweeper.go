package repository

import (
	"context"
	"log/slog"
	"time"
)

// RunSweeper calls Sweep every interval until ctx is done. onSweep receives the number of
// sessions each sweep dropped.
func RunSweeper(ctx context.Context, logger *slog.Logger, repo ExpiringSessionRepository, interval time.Duration, onSweep func(evicted int)) {
	log := logger.With("method", "RunSweeper")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("session sweeper stopped")
			return
		case <-ticker.C:
			evicted := repo.Sweep()
			if evicted > 0 {
				log.Info("expired sessions dropped", "count", evicted)
			}

			onSweep(evicted)
		}
	}
}
