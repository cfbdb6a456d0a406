package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Monchel-Emmy/SmartRent360-backend/internal/domain"
)

// PostgresUserRepository implements domain.UserRepository using PostgreSQL
type PostgresUserRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresUserRepository creates a new user repository
func NewPostgresUserRepository(db *sql.DB, logger *slog.Logger) *PostgresUserRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new user. A unique violation on the phone column is
// reported as domain.ErrConflict.
func (r *PostgresUserRepository) Create(user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query := `
		INSERT INTO users (id, name, phone, role, password_hash, national_id, verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		user.ID,
		user.Name,
		user.Phone,
		user.Role,
		user.PasswordHash,
		user.NationalID,
		user.Verified,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("phone number already registered: %w", domain.ErrConflict)
		}
		r.logger.Error("failed to create user",
			slog.String("phone", user.Phone),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(id string) (*domain.User, error) {
	return r.getOne(`WHERE id = $1`, id)
}

// GetByPhone retrieves a user by phone number
func (r *PostgresUserRepository) GetByPhone(phone string) (*domain.User, error) {
	return r.getOne(`WHERE phone = $1`, phone)
}

func (r *PostgresUserRepository) getOne(where string, arg interface{}) (*domain.User, error) {
	user := &domain.User{}

	query := `
		SELECT id, name, phone, role, password_hash, national_id, verified, created_at, updated_at
		FROM users
	` + where

	err := r.db.QueryRow(query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Phone,
		&user.Role,
		&user.PasswordHash,
		&user.NationalID,
		&user.Verified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// Verify sets the verified flag. The operation is idempotent: verifying an
// already-verified user succeeds and changes nothing.
func (r *PostgresUserRepository) Verify(id string) (*domain.User, error) {
	query := `
		UPDATE users
		SET verified = TRUE, updated_at = now()
		WHERE id = $1
		RETURNING id, name, phone, role, password_hash, national_id, verified, created_at, updated_at
	`

	user := &domain.User{}
	err := r.db.QueryRow(query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Phone,
		&user.Role,
		&user.PasswordHash,
		&user.NationalID,
		&user.Verified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to verify user: %w", err)
	}

	return user, nil
}

// ListPendingVerification returns unverified users, newest first, with the
// total count of matching rows.
func (r *PostgresUserRepository) ListPendingVerification(page, pageSize int) ([]*domain.User, int, error) {
	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM users WHERE verified = FALSE`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count pending users: %w", err)
	}

	query := `
		SELECT id, name, phone, role, password_hash, national_id, verified, created_at, updated_at
		FROM users
		WHERE verified = FALSE
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(query, pageSize, (page-1)*pageSize)
	if err != nil {
		r.logger.Error("failed to list pending users", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to list pending users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user := &domain.User{}
		err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Phone,
			&user.Role,
			&user.PasswordHash,
			&user.NationalID,
			&user.Verified,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, total, rows.Err()
}
