package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/Monchel-Emmy/SmartRent360-backend/internal/domain"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/infrastructure/redis"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/reliability/circuitbreaker"
	"github.com/Monchel-Emmy/SmartRent360-backend/pkg/cache"
)

const statsCacheKey = "smartrent:admin:stats"

// AdminService serves the read-only platform aggregate. Results are cached
// in Redis for a short TTL; stale totals within the TTL window are
// acceptable for a dashboard. A circuit breaker skips Redis entirely while
// it keeps failing, and without Redis a process-local cache takes over so a
// burst of dashboard loads still produces one query.
type AdminService struct {
	statsRepo domain.StatsRepository
	cache     *redis.Client
	breaker   *circuitbreaker.CircuitBreaker
	local     *cache.Cache
	cacheTTL  time.Duration
	logger    *slog.Logger
}

// NewAdminService creates a new admin service. cacheClient may be nil, in
// which case stats fall back to the in-process cache.
func NewAdminService(statsRepo domain.StatsRepository, cacheClient *redis.Client, cacheTTL time.Duration, logger *slog.Logger) *AdminService {
	if logger == nil {
		logger = slog.Default()
	}

	breaker := circuitbreaker.NewCircuitBreaker(5, 2, 30*time.Second)
	breaker.SetStateChangeCallback(func(from, to circuitbreaker.State) {
		logger.Warn("stats cache breaker state changed",
			slog.Int("from", int(from)),
			slog.Int("to", int(to)),
		)
	})

	return &AdminService{
		statsRepo: statsRepo,
		cache:     cacheClient,
		breaker:   breaker,
		local:     cache.New(),
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// GetStats returns entity counts and commission sums.
func (s *AdminService) GetStats(ctx context.Context) (*domain.Stats, error) {
	if s.cache != nil && s.breaker.AllowRequest() {
		cached, err := s.cache.Get(ctx, statsCacheKey)
		switch {
		case err == nil:
			s.breaker.RecordSuccess()
			stats := &domain.Stats{}
			if err := json.Unmarshal([]byte(cached), stats); err == nil {
				return stats, nil
			}
		case errors.Is(err, redis.ErrCacheMiss):
			// The cache answered; there is just nothing in it yet.
			s.breaker.RecordSuccess()
		default:
			s.breaker.RecordFailure()
			s.logger.Warn("stats cache read failed", slog.String("error", err.Error()))
		}
	} else if cached, ok := s.local.Get(statsCacheKey); ok {
		if stats, ok := cached.(*domain.Stats); ok {
			return stats, nil
		}
	}

	return s.RefreshStats(ctx)
}

// RefreshStats queries the database and repopulates the cache, bypassing any
// cached value. The background warmer calls this on its interval.
func (s *AdminService) RefreshStats(ctx context.Context) (*domain.Stats, error) {
	stats, err := s.statsRepo.GetStats()
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.breaker.AllowRequest() {
		if data, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, statsCacheKey, data, s.cacheTTL); err != nil {
				// Serving uncached stats beats failing the request.
				s.breaker.RecordFailure()
				s.logger.Warn("failed to cache stats", slog.String("error", err.Error()))
			} else {
				s.breaker.RecordSuccess()
			}
		}
	}
	// Keep the local cache warm regardless; it serves when Redis is absent
	// or the breaker is open.
	s.local.Set(statsCacheKey, stats, s.cacheTTL)

	return stats, nil
}
