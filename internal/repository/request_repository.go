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

// PostgresRequestRepository implements domain.RequestRepository using PostgreSQL
type PostgresRequestRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresRequestRepository creates a new request repository
func NewPostgresRequestRepository(db *sql.DB, logger *slog.Logger) *PostgresRequestRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRequestRepository{db: db, logger: logger}
}

// requestColumns selects a request joined with its tenant and the property
// (including the property's owner).
const requestColumns = `
	r.id, r.tenant_id, r.property_id, COALESCE(r.admin_id, ''), r.status, r.message,
	r.created_at, r.updated_at,
	t.id, t.name, t.phone, t.role, t.national_id, t.verified, t.created_at, t.updated_at,
	p.id, p.title, p.type, p.price, p.location, p.rooms, p.status, p.verified,
	p.owner_id, p.created_at, p.updated_at,
	o.id, o.name, o.phone, o.role, o.national_id, o.verified, o.created_at, o.updated_at
`

const requestJoins = `
	FROM requests r
	JOIN users t ON t.id = r.tenant_id
	JOIN properties p ON p.id = r.property_id
	JOIN users o ON o.id = p.owner_id
`

func scanRequest(scanner interface{ Scan(...interface{}) error }) (*domain.Request, error) {
	req := &domain.Request{}
	tenant := &domain.UserView{}
	property := &domain.Property{Media: []domain.Media{}}
	owner := &domain.UserView{}

	err := scanner.Scan(
		&req.ID, &req.TenantID, &req.PropertyID, &req.AdminID, &req.Status, &req.Message,
		&req.CreatedAt, &req.UpdatedAt,
		&tenant.ID, &tenant.Name, &tenant.Phone, &tenant.Role, &tenant.NationalID,
		&tenant.Verified, &tenant.CreatedAt, &tenant.UpdatedAt,
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
	req.Tenant = tenant
	req.Property = property
	return req, nil
}

// Create inserts a new PENDING request. The partial unique index on
// (tenant_id, property_id) WHERE status='PENDING' turns a concurrent double
// submission into domain.ErrConflict instead of a duplicate row.
func (r *PostgresRequestRepository) Create(request *domain.Request) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	request.Status = domain.RequestPending

	query := `
		INSERT INTO requests (id, tenant_id, property_id, status, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		request.ID,
		request.TenantID,
		request.PropertyID,
		request.Status,
		request.Message,
	).Scan(&request.CreatedAt, &request.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("a pending request for this property already exists: %w", domain.ErrConflict)
		}
		r.logger.Error("failed to create request",
			slog.String("tenant_id", request.TenantID),
			slog.String("property_id", request.PropertyID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create request: %w", err)
	}

	return nil
}

// GetByID retrieves a request with its tenant and property
func (r *PostgresRequestRepository) GetByID(id string) (*domain.Request, error) {
	query := `SELECT ` + requestColumns + requestJoins + ` WHERE r.id = $1`

	request, err := scanRequest(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("request: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	if err := attachPropertyMedia(r.db, []*domain.Property{request.Property}); err != nil {
		return nil, err
	}
	return request, nil
}

// Search returns requests matching the filters, newest first, plus the total
// count.
func (r *PostgresRequestRepository) Search(filters domain.RequestFilters, page, pageSize int) ([]*domain.Request, int, error) {
	var conds []string
	var args []interface{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filters.Status != "" {
		add("r.status = $%d", filters.Status)
	}
	if filters.TenantID != "" {
		add("r.tenant_id = $%d", filters.TenantID)
	}
	if filters.PropertyID != "" {
		add("r.property_id = $%d", filters.PropertyID)
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM requests r ` + where
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count requests: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s %s %s
		ORDER BY r.created_at DESC
		LIMIT $%d OFFSET $%d
	`, requestColumns, requestJoins, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("failed to search requests", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to search requests: %w", err)
	}
	defer rows.Close()

	var requests []*domain.Request
	var properties []*domain.Property
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
		properties = append(properties, req.Property)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := attachPropertyMedia(r.db, properties); err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// Connect moves a PENDING request to CONNECTED and records the mediating
// admin. The status guard is in the WHERE clause, so a request that raced to
// another state is never overwritten.
func (r *PostgresRequestRepository) Connect(id, adminID string) (*domain.Request, error) {
	query := `
		UPDATE requests
		SET status = $1, admin_id = $2, updated_at = now()
		WHERE id = $3 AND status = $4
	`

	res, err := r.db.Exec(query, domain.RequestConnected, adminID, id, domain.RequestPending)
	if err != nil {
		return nil, fmt.Errorf("failed to connect request: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("request is not in pending status: %w", domain.ErrConflict)
	}

	return r.GetByID(id)
}

// Complete moves a CONNECTED request to COMPLETED and its property to RENTED
// inside one transaction. If either write fails, neither takes effect.
func (r *PostgresRequestRepository) Complete(id string) (*domain.Request, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE requests
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
	`, domain.RequestCompleted, id, domain.RequestConnected)
	if err != nil {
		return nil, fmt.Errorf("failed to complete request: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("request must be connected before completion: %w", domain.ErrConflict)
	}

	if _, err := tx.Exec(`
		UPDATE properties
		SET status = $1, updated_at = now()
		WHERE id = (SELECT property_id FROM requests WHERE id = $2)
	`, domain.PropertyRented, id); err != nil {
		return nil, fmt.Errorf("failed to mark property rented: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit completion: %w", err)
	}

	return r.GetByID(id)
}
