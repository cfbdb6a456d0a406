package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Monchel-Emmy/SmartRent360-backend/internal/domain"
)

// PostgresCommissionRepository implements domain.CommissionRepository using PostgreSQL
type PostgresCommissionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresCommissionRepository creates a new commission repository
func NewPostgresCommissionRepository(db *sql.DB, logger *slog.Logger) *PostgresCommissionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCommissionRepository{db: db, logger: logger}
}

const commissionColumns = `
	c.id, c.property_id, c.commissioner_id, c.amount, c.fee, c.created_at,
	m.id, m.name, m.phone, m.role, m.national_id, m.verified, m.created_at, m.updated_at,
	p.id, p.title, p.type, p.price, p.location, p.rooms, p.status, p.verified,
	p.owner_id, p.created_at, p.updated_at,
	o.id, o.name, o.phone, o.role, o.national_id, o.verified, o.created_at, o.updated_at
`

const commissionJoins = `
	FROM commissions c
	JOIN users m ON m.id = c.commissioner_id
	JOIN properties p ON p.id = c.property_id
	JOIN users o ON o.id = p.owner_id
`

func scanCommission(scanner interface{ Scan(...interface{}) error }) (*domain.Commission, error) {
	c := &domain.Commission{}
	commissioner := &domain.UserView{}
	property := &domain.Property{Media: []domain.Media{}}
	owner := &domain.UserView{}

	err := scanner.Scan(
		&c.ID, &c.PropertyID, &c.CommissionerID, &c.Amount, &c.Fee, &c.CreatedAt,
		&commissioner.ID, &commissioner.Name, &commissioner.Phone, &commissioner.Role,
		&commissioner.NationalID, &commissioner.Verified, &commissioner.CreatedAt, &commissioner.UpdatedAt,
		&property.ID, &property.Title, &property.Type, &property.Price, &property.Location,
		&property.Rooms, &property.Status, &property.Verified, &property.OwnerID,
		&property.CreatedAt, &property.UpdatedAt,
		&owner.ID, &owner.Name, &owner.Phone, &owner.Role, &owner.NationalID,
		&owner.Verified, &owner.CreatedAt, &owner.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	property.Owner = owner
	c.Commissioner = commissioner
	c.Property = property
	return c, nil
}

// Create persists a commission. Amount and fee are written once and never
// updated afterwards; there is no update path on this repository.
func (r *PostgresCommissionRepository) Create(commission *domain.Commission) error {
	if commission.ID == "" {
		commission.ID = uuid.NewString()
	}

	query := `
		INSERT INTO commissions (id, property_id, commissioner_id, amount, fee)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.db.QueryRow(
		query,
		commission.ID,
		commission.PropertyID,
		commission.CommissionerID,
		commission.Amount,
		commission.Fee,
	).Scan(&commission.CreatedAt)

	if err != nil {
		r.logger.Error("failed to create commission",
			slog.String("commissioner_id", commission.CommissionerID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create commission: %w", err)
	}

	return nil
}

// GetByID retrieves a commission with its commissioner and property
func (r *PostgresCommissionRepository) GetByID(id string) (*domain.Commission, error) {
	query := `SELECT ` + commissionColumns + commissionJoins + ` WHERE c.id = $1`

	commission, err := scanCommission(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("commission: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get commission: %w", err)
	}
	return commission, nil
}

// Search returns commissions matching the filters, newest first, plus the
// total count.
func (r *PostgresCommissionRepository) Search(filters domain.CommissionFilters, page, pageSize int) ([]*domain.Commission, int, error) {
	var conds []string
	var args []interface{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filters.CommissionerID != "" {
		add("c.commissioner_id = $%d", filters.CommissionerID)
	}
	if filters.PropertyID != "" {
		add("c.property_id = $%d", filters.PropertyID)
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM commissions c ` + where
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count commissions: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s %s %s
		ORDER BY c.created_at DESC
		LIMIT $%d OFFSET $%d
	`, commissionColumns, commissionJoins, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("failed to search commissions", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to search commissions: %w", err)
	}
	defer rows.Close()

	var commissions []*domain.Commission
	for rows.Next() {
		c, err := scanCommission(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan commission: %w", err)
		}
		commissions = append(commissions, c)
	}
	return commissions, total, rows.Err()
}
