package repository

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Monchel-Emmy/SmartRent360-backend/internal/domain"
)

// PostgresStatsRepository implements domain.StatsRepository using PostgreSQL
type PostgresStatsRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresStatsRepository creates a new stats repository
func NewPostgresStatsRepository(db *sql.DB, logger *slog.Logger) *PostgresStatsRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStatsRepository{db: db, logger: logger}
}

// GetStats aggregates entity counts and commission sums in a single query.
// The counts are independent reads; perfect consistency between them under
// concurrent writes is not required.
func (r *PostgresStatsRepository) GetStats() (*domain.Stats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM properties),
			(SELECT COUNT(*) FROM requests),
			(SELECT COUNT(*) FROM commissions),
			(SELECT COUNT(*) FROM users WHERE verified = FALSE),
			(SELECT COUNT(*) FROM properties WHERE verified = FALSE),
			(SELECT COUNT(*) FROM requests WHERE status = 'PENDING'),
			(SELECT COALESCE(SUM(amount), 0) FROM commissions),
			(SELECT COALESCE(SUM(fee), 0) FROM commissions)
	`

	stats := &domain.Stats{}
	err := r.db.QueryRow(query).Scan(
		&stats.TotalUsers,
		&stats.TotalProperties,
		&stats.TotalRequests,
		&stats.TotalCommissions,
		&stats.PendingUsers,
		&stats.PendingProperties,
		&stats.PendingRequests,
		&stats.TotalCommissionAmount,
		&stats.TotalPlatformFee,
	)
	if err != nil {
		r.logger.Error("failed to aggregate stats", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to aggregate stats: %w", err)
	}

	return stats, nil
}
