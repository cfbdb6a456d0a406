package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Monchel-Emmy/SmartRent360-backend/internal/domain"
)

// PostgresPropertyRepository implements domain.PropertyRepository using PostgreSQL
type PostgresPropertyRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresPropertyRepository creates a new property repository
func NewPostgresPropertyRepository(db *sql.DB, logger *slog.Logger) *PostgresPropertyRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPropertyRepository{db: db, logger: logger}
}

// propertyColumns selects a property joined with its owner.
const propertyColumns = `
	p.id, p.title, p.type, p.price, p.location, p.rooms, p.status, p.verified,
	p.owner_id, p.created_at, p.updated_at,
	u.id, u.name, u.phone, u.role, u.national_id, u.verified, u.created_at, u.updated_at
`

func scanProperty(scanner interface{ Scan(...interface{}) error }) (*domain.Property, error) {
	p := &domain.Property{Media: []domain.Media{}}
	owner := &domain.UserView{}
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Type, &p.Price, &p.Location, &p.Rooms, &p.Status, &p.Verified,
		&p.OwnerID, &p.CreatedAt, &p.UpdatedAt,
		&owner.ID, &owner.Name, &owner.Phone, &owner.Role, &owner.NationalID,
		&owner.Verified, &owner.CreatedAt, &owner.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Owner = owner
	return p, nil
}

// Create inserts a new property. Status and verified always start at their
// defaults regardless of what the caller set.
func (r *PostgresPropertyRepository) Create(property *domain.Property) error {
	if property.ID == "" {
		property.ID = uuid.NewString()
	}
	property.Status = domain.PropertyAvailable
	property.Verified = false

	query := `
		INSERT INTO properties (id, title, type, price, location, rooms, status, verified, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		property.ID,
		property.Title,
		property.Type,
		property.Price,
		property.Location,
		property.Rooms,
		property.Status,
		property.Verified,
		property.OwnerID,
	).Scan(&property.CreatedAt, &property.UpdatedAt)

	if err != nil {
		r.logger.Error("failed to create property",
			slog.String("owner_id", property.OwnerID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create property: %w", err)
	}

	if property.Media == nil {
		property.Media = []domain.Media{}
	}
	return nil
}

// GetByID retrieves a property with its owner and media
func (r *PostgresPropertyRepository) GetByID(id string) (*domain.Property, error) {
	query := `
		SELECT ` + propertyColumns + `
		FROM properties p
		JOIN users u ON u.id = p.owner_id
		WHERE p.id = $1
	`

	property, err := scanProperty(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("property: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	if err := attachPropertyMedia(r.db, []*domain.Property{property}); err != nil {
		return nil, err
	}
	return property, nil
}

// Search returns properties matching the filters, newest first, plus the
// total count. Absent filters impose no constraint; set filters are
// AND-combined.
func (r *PostgresPropertyRepository) Search(filters domain.PropertyFilters, page, pageSize int) ([]*domain.Property, int, error) {
	var conds []string
	var args []interface{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filters.Type != "" {
		add("p.type = $%d", filters.Type)
	}
	if filters.MinPrice > 0 {
		add("p.price >= $%d", filters.MinPrice)
	}
	if filters.MaxPrice > 0 {
		add("p.price <= $%d", filters.MaxPrice)
	}
	if filters.Location != "" {
		add("p.location ILIKE $%d", "%"+filters.Location+"%")
	}
	if filters.Rooms > 0 {
		add("p.rooms = $%d", filters.Rooms)
	}
	if filters.Status != "" {
		add("p.status = $%d", filters.Status)
	}
	if filters.Verified != nil {
		add("p.verified = $%d", *filters.Verified)
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM properties p ` + where
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count properties: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT `+propertyColumns+`
		FROM properties p
		JOIN users u ON u.id = p.owner_id
		%s
		ORDER BY p.created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	properties, err := r.queryMany(query, args...)
	if err != nil {
		return nil, 0, err
	}
	return properties, total, nil
}

// Update applies a partial patch to a property. Nil patch fields are left
// unchanged; owner_id is never touched.
func (r *PostgresPropertyRepository) Update(id string, patch domain.PropertyPatch) (*domain.Property, error) {
	var sets []string
	var args []interface{}

	set := func(col string, val interface{}) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Type != nil {
		set("type", *patch.Type)
	}
	if patch.Price != nil {
		set("price", *patch.Price)
	}
	if patch.Location != nil {
		set("location", *patch.Location)
	}
	if patch.Rooms != nil {
		set("rooms", *patch.Rooms)
	}
	if patch.Status != nil {
		set("status", *patch.Status)
	}

	if len(sets) == 0 {
		return r.GetByID(id)
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE properties SET %s, updated_at = now() WHERE id = $%d`,
		strings.Join(sets, ", "), len(args),
	)

	res, err := r.db.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update property: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("property: %w", domain.ErrNotFound)
	}

	return r.GetByID(id)
}

// Verify sets the verified flag; idempotent.
func (r *PostgresPropertyRepository) Verify(id string) (*domain.Property, error) {
	res, err := r.db.Exec(`UPDATE properties SET verified = TRUE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to verify property: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("property: %w", domain.ErrNotFound)
	}
	return r.GetByID(id)
}

// ListPendingVerification returns unverified properties, newest first.
func (r *PostgresPropertyRepository) ListPendingVerification(page, pageSize int) ([]*domain.Property, int, error) {
	verified := false
	return r.Search(domain.PropertyFilters{Verified: &verified}, page, pageSize)
}

// ListByOwner returns all of a landlord's properties, newest first.
func (r *PostgresPropertyRepository) ListByOwner(ownerID string) ([]*domain.Property, error) {
	query := `
		SELECT ` + propertyColumns + `
		FROM properties p
		JOIN users u ON u.id = p.owner_id
		WHERE p.owner_id = $1
		ORDER BY p.created_at DESC
	`
	return r.queryMany(query, ownerID)
}

// AddMedia attaches a media URL to a property.
func (r *PostgresPropertyRepository) AddMedia(media *domain.Media) error {
	if media.ID == "" {
		media.ID = uuid.NewString()
	}

	query := `
		INSERT INTO property_media (id, property_id, url)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	if err := r.db.QueryRow(query, media.ID, media.PropertyID, media.URL).Scan(&media.CreatedAt); err != nil {
		return fmt.Errorf("failed to add media: %w", err)
	}
	return nil
}

func (r *PostgresPropertyRepository) queryMany(query string, args ...interface{}) ([]*domain.Property, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("failed to query properties", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	var properties []*domain.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := attachPropertyMedia(r.db, properties); err != nil {
		return nil, err
	}
	return properties, nil
}

// attachPropertyMedia loads media for the given properties in one query,
// preserving creation order within each property. It is shared with the
// request repository, which hydrates the property a request points at.
func attachPropertyMedia(db *sql.DB, properties []*domain.Property) error {
	if len(properties) == 0 {
		return nil
	}

	ids, byID := indexPropertiesByID(properties)

	query := `
		SELECT id, property_id, url, created_at
		FROM property_media
		WHERE property_id = ANY($1)
		ORDER BY created_at, id
	`

	rows, err := db.Query(query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load media: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m domain.Media
		if err := rows.Scan(&m.ID, &m.PropertyID, &m.URL, &m.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan media: %w", err)
		}
		for _, p := range byID[m.PropertyID] {
			p.Media = append(p.Media, m)
		}
	}
	return rows.Err()
}

// indexPropertiesByID groups properties by ID. Several request rows on one
// page can hydrate distinct Property objects sharing an ID; media must reach
// every one of them.
func indexPropertiesByID(properties []*domain.Property) ([]string, map[string][]*domain.Property) {
	ids := make([]string, 0, len(properties))
	byID := make(map[string][]*domain.Property, len(properties))
	for _, p := range properties {
		if _, seen := byID[p.ID]; !seen {
			ids = append(ids, p.ID)
		}
		byID[p.ID] = append(byID[p.ID], p)
	}
	return ids, byID
}
