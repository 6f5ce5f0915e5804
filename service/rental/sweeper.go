package rentalsvc

import (
	"context"
	"log/slog"
	"time"
)

// RunSweeper periodically flips overdue rentals until ctx is cancelled.
// The sweep is idempotent, so overlap with the admin endpoint is harmless.
func RunSweeper(ctx context.Context, svc Service, interval time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sweep(ctx, svc, log)

	for {
		select {
		case <-ctx.Done():
			log.Info("stopping overdue sweeper")
			return
		case <-ticker.C:
			sweep(ctx, svc, log)
		}
	}
}

func sweep(ctx context.Context, svc Service, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	n, err := svc.SweepOverdue(ctx)
	if err != nil {
		log.Error("overdue sweep failed", "err", err)
		return
	}
	if n > 0 {
		log.Info("overdue sweep", "updated_count", n)
	}
}
