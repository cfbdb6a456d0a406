package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/Monchel-Emmy/SmartRent360-backend/internal/domain"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/reliability/retry"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/service"
)

// StatsWarmer keeps the admin dashboard aggregate warm by refreshing the
// stats cache on an interval, so dashboard loads never pay for the
// aggregation query.
type StatsWarmer struct {
	adminService *service.AdminService
	logger       *slog.Logger
	interval     time.Duration
	retryCfg     *retry.Config
}

// NewStatsWarmer creates a new stats warmer
func NewStatsWarmer(adminService *service.AdminService, logger *slog.Logger, interval time.Duration) *StatsWarmer {
	return &StatsWarmer{
		adminService: adminService,
		logger:       logger,
		interval:     interval,
		retryCfg:     retry.DefaultConfig(),
	}
}

// Start begins the warmer loop. It runs until the context is cancelled.
func (w *StatsWarmer) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("stats warmer started", slog.Duration("interval", w.interval))

	// Warm the cache once at startup so the first dashboard load is served
	// from cache.
	w.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stats warmer stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *StatsWarmer) refresh(ctx context.Context) {
	_, err := retry.Do(ctx, w.retryCfg, w.logger, "refresh stats", func(ctx context.Context) (*domain.Stats, error) {
		return w.adminService.RefreshStats(ctx)
	})
	if err != nil {
		// A stale or missing cache entry only costs the next dashboard
		// load one query.
		w.logger.Error("failed to refresh stats", slog.String("error", err.Error()))
	}
}
