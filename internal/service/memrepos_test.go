package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/Monchel-Emmy/SmartRent360-backend/internal/domain"
)

// In-memory repositories mirroring the storage-layer guards: unique phone,
// one pending request per (tenant, property), transactional completion.

type memUserRepo struct {
	byID    map[string]*domain.User
	byPhone map[string]*domain.User
	seq     int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*domain.User{}, byPhone: map[string]*domain.User{}}
}

func (m *memUserRepo) Create(u *domain.User) error {
	if _, exists := m.byPhone[u.Phone]; exists {
		return fmt.Errorf("phone number already registered: %w", domain.ErrConflict)
	}
	if u.ID == "" {
		m.seq++
		u.ID = fmt.Sprintf("user-%d", m.seq)
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = u
	m.byPhone[u.Phone] = u
	return nil
}

func (m *memUserRepo) GetByID(id string) (*domain.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
}

func (m *memUserRepo) GetByPhone(phone string) (*domain.User, error) {
	if u, ok := m.byPhone[phone]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user with phone %s: %w", phone, domain.ErrNotFound)
}

func (m *memUserRepo) Verify(id string) (*domain.User, error) {
	u, err := m.GetByID(id)
	if err != nil {
		return nil, err
	}
	u.Verified = true
	u.UpdatedAt = time.Now()
	return u, nil
}

func (m *memUserRepo) ListPendingVerification(page, pageSize int) ([]*domain.User, int, error) {
	pending := []*domain.User{}
	for _, u := range m.byID {
		if !u.Verified {
			pending = append(pending, u)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].ID < pending[j].ID })
	return paginate(pending, page, pageSize), len(pending), nil
}

type memPropertyRepo struct {
	byID map[string]*domain.Property
	seq  int
}

func newMemPropertyRepo() *memPropertyRepo {
	return &memPropertyRepo{byID: map[string]*domain.Property{}}
}

func (m *memPropertyRepo) Create(p *domain.Property) error {
	m.seq++
	p.ID = fmt.Sprintf("prop-%d", m.seq)
	p.Status = domain.PropertyAvailable
	p.Verified = false
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.byID[p.ID] = p
	return nil
}

func (m *memPropertyRepo) GetByID(id string) (*domain.Property, error) {
	if p, ok := m.byID[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("property %s: %w", id, domain.ErrNotFound)
}

func (m *memPropertyRepo) Search(f domain.PropertyFilters, page, pageSize int) ([]*domain.Property, int, error) {
	matches := []*domain.Property{}
	for _, p := range m.byID {
		if f.Type != "" && p.Type != f.Type {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.MinPrice > 0 && p.Price < f.MinPrice {
			continue
		}
		if f.MaxPrice > 0 && p.Price > f.MaxPrice {
			continue
		}
		if f.Rooms > 0 && p.Rooms != f.Rooms {
			continue
		}
		if f.Verified != nil && p.Verified != *f.Verified {
			continue
		}
		matches = append(matches, p)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return paginate(matches, page, pageSize), len(matches), nil
}

func (m *memPropertyRepo) Update(id string, patch domain.PropertyPatch) (*domain.Property, error) {
	p, err := m.GetByID(id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Type != nil {
		p.Type = *patch.Type
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Location != nil {
		p.Location = *patch.Location
	}
	if patch.Rooms != nil {
		p.Rooms = *patch.Rooms
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	p.UpdatedAt = time.Now()
	return p, nil
}

func (m *memPropertyRepo) Verify(id string) (*domain.Property, error) {
	p, err := m.GetByID(id)
	if err != nil {
		return nil, err
	}
	p.Verified = true
	p.UpdatedAt = time.Now()
	return p, nil
}

func (m *memPropertyRepo) ListPendingVerification(page, pageSize int) ([]*domain.Property, int, error) {
	unverified := false
	return m.Search(domain.PropertyFilters{Verified: &unverified}, page, pageSize)
}

func (m *memPropertyRepo) ListByOwner(ownerID string) ([]*domain.Property, error) {
	owned := []*domain.Property{}
	for _, p := range m.byID {
		if p.OwnerID == ownerID {
			owned = append(owned, p)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].ID < owned[j].ID })
	return owned, nil
}

func (m *memPropertyRepo) AddMedia(media *domain.Media) error {
	p, err := m.GetByID(media.PropertyID)
	if err != nil {
		return err
	}
	m.seq++
	media.ID = fmt.Sprintf("media-%d", m.seq)
	media.CreatedAt = time.Now()
	p.Media = append(p.Media, *media)
	return nil
}

type memRequestRepo struct {
	byID       map[string]*domain.Request
	properties *memPropertyRepo
	seq        int
}

func newMemRequestRepo(properties *memPropertyRepo) *memRequestRepo {
	return &memRequestRepo{byID: map[string]*domain.Request{}, properties: properties}
}

func (m *memRequestRepo) Create(r *domain.Request) error {
	for _, existing := range m.byID {
		if existing.TenantID == r.TenantID && existing.PropertyID == r.PropertyID &&
			existing.Status == domain.RequestPending {
			return fmt.Errorf("a pending request for this property already exists: %w", domain.ErrConflict)
		}
	}
	m.seq++
	r.ID = fmt.Sprintf("req-%d", m.seq)
	r.Status = domain.RequestPending
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	m.byID[r.ID] = r
	return nil
}

func (m *memRequestRepo) GetByID(id string) (*domain.Request, error) {
	if r, ok := m.byID[id]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("request %s: %w", id, domain.ErrNotFound)
}

func (m *memRequestRepo) Search(f domain.RequestFilters, page, pageSize int) ([]*domain.Request, int, error) {
	matches := []*domain.Request{}
	for _, r := range m.byID {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.TenantID != "" && r.TenantID != f.TenantID {
			continue
		}
		if f.PropertyID != "" && r.PropertyID != f.PropertyID {
			continue
		}
		matches = append(matches, r)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return paginate(matches, page, pageSize), len(matches), nil
}

func (m *memRequestRepo) Connect(id, adminID string) (*domain.Request, error) {
	r, err := m.GetByID(id)
	if err != nil {
		return nil, err
	}
	if r.Status != domain.RequestPending {
		return nil, fmt.Errorf("request is not in pending status: %w", domain.ErrConflict)
	}
	r.Status = domain.RequestConnected
	r.AdminID = adminID
	r.UpdatedAt = time.Now()
	return r, nil
}

func (m *memRequestRepo) Complete(id string) (*domain.Request, error) {
	r, err := m.GetByID(id)
	if err != nil {
		return nil, err
	}
	if r.Status != domain.RequestConnected {
		return nil, fmt.Errorf("request must be connected before completion: %w", domain.ErrConflict)
	}
	property, err := m.properties.GetByID(r.PropertyID)
	if err != nil {
		return nil, err
	}
	r.Status = domain.RequestCompleted
	r.UpdatedAt = time.Now()
	property.Status = domain.PropertyRented
	property.UpdatedAt = r.UpdatedAt
	return r, nil
}

type memCommissionRepo struct {
	byID map[string]*domain.Commission
	seq  int
}

func newMemCommissionRepo() *memCommissionRepo {
	return &memCommissionRepo{byID: map[string]*domain.Commission{}}
}

func (m *memCommissionRepo) Create(c *domain.Commission) error {
	m.seq++
	c.ID = fmt.Sprintf("com-%d", m.seq)
	c.CreatedAt = time.Now()
	m.byID[c.ID] = c
	return nil
}

func (m *memCommissionRepo) GetByID(id string) (*domain.Commission, error) {
	if c, ok := m.byID[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("commission %s: %w", id, domain.ErrNotFound)
}

func (m *memCommissionRepo) Search(f domain.CommissionFilters, page, pageSize int) ([]*domain.Commission, int, error) {
	matches := []*domain.Commission{}
	for _, c := range m.byID {
		if f.CommissionerID != "" && c.CommissionerID != f.CommissionerID {
			continue
		}
		if f.PropertyID != "" && c.PropertyID != f.PropertyID {
			continue
		}
		matches = append(matches, c)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return paginate(matches, page, pageSize), len(matches), nil
}

type memStatsRepo struct {
	stats domain.Stats
	calls int
}

func (m *memStatsRepo) GetStats() (*domain.Stats, error) {
	m.calls++
	out := m.stats
	return &out, nil
}

func paginate[T any](items []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// failingUserRepo simulates a storage outage on lookups.
type failingUserRepo struct {
	*memUserRepo
	err error
}

func (f *failingUserRepo) GetByID(id string) (*domain.User, error) {
	return nil, f.err
}

// seedUser registers a user directly through the repo with a known state.
func seedUser(repo *memUserRepo, role domain.Role, verified bool) *domain.User {
	u := &domain.User{
		Name:     "Test " + string(role),
		Phone:    fmt.Sprintf("+25078%07d", repo.seq+1),
		Role:     role,
		Verified: verified,
	}
	if err := repo.Create(u); err != nil {
		panic(err)
	}
	return u
}

// seedProperty creates a listing owned by ownerID.
func seedProperty(repo *memPropertyRepo, ownerID string) *domain.Property {
	p := &domain.Property{
		Title:    "Two bedroom",
		Type:     domain.PropertyHouse,
		Price:    250000,
		Location: "Kigali",
		Rooms:    2,
		OwnerID:  ownerID,
	}
	if err := repo.Create(p); err != nil {
		panic(err)
	}
	return p
}
