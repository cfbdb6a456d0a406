package service

import (
	"errors"
	"testing"

	"github.com/Monchel-Emmy/SmartRent360-backend/internal/domain"
)

type requestFixture struct {
	service    *RequestService
	users      *memUserRepo
	properties *memPropertyRepo
	requests   *memRequestRepo
	tenant     *domain.User
	admin      *domain.User
	property   *domain.Property
}

func newRequestFixture(t *testing.T) *requestFixture {
	t.Helper()
	users := newMemUserRepo()
	properties := newMemPropertyRepo()
	requests := newMemRequestRepo(properties)

	landlord := seedUser(users, domain.RoleLandlord, true)
	return &requestFixture{
		service:    NewRequestService(requests, users, properties, nil, nil),
		users:      users,
		properties: properties,
		requests:   requests,
		tenant:     seedUser(users, domain.RoleTenant, true),
		admin:      seedUser(users, domain.RoleAdmin, true),
		property:   seedProperty(properties, landlord.ID),
	}
}

func TestRequestLifecycle(t *testing.T) {
	f := newRequestFixture(t)

	request, err := f.service.Create(f.tenant.ID, f.property.ID, "interested")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if request.Status != domain.RequestPending {
		t.Fatalf("expected PENDING, got %s", request.Status)
	}

	connected, err := f.service.Connect(request.ID, f.admin.ID)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	if connected.Status != domain.RequestConnected {
		t.Fatalf("expected CONNECTED, got %s", connected.Status)
	}
	if connected.AdminID != f.admin.ID {
		t.Fatalf("expected admin %s recorded, got %s", f.admin.ID, connected.AdminID)
	}

	completed, err := f.service.Complete(request.ID)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if completed.Status != domain.RequestCompleted {
		t.Fatalf("expected COMPLETED, got %s", completed.Status)
	}

	property, err := f.properties.GetByID(f.property.ID)
	if err != nil {
		t.Fatalf("get property failed: %v", err)
	}
	if property.Status != domain.PropertyRented {
		t.Fatalf("completion must mark the property RENTED, got %s", property.Status)
	}
}

func TestCreateRequestRequiresVerifiedTenant(t *testing.T) {
	f := newRequestFixture(t)
	unverified := seedUser(f.users, domain.RoleTenant, false)

	_, err := f.service.Create(unverified.ID, f.property.ID, "")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestCreateRequestRequiresAvailableProperty(t *testing.T) {
	f := newRequestFixture(t)

	rented := domain.PropertyRented
	if _, err := f.properties.Update(f.property.ID, domain.PropertyPatch{Status: &rented}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	_, err := f.service.Create(f.tenant.ID, f.property.ID, "")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict for rented property, got %v", err)
	}
}

func TestDuplicatePendingRequestRejected(t *testing.T) {
	f := newRequestFixture(t)

	if _, err := f.service.Create(f.tenant.ID, f.property.ID, ""); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := f.service.Create(f.tenant.ID, f.property.ID, "")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict for duplicate pending request, got %v", err)
	}
}

func TestNewPendingRequestAllowedAfterConnection(t *testing.T) {
	f := newRequestFixture(t)

	first, err := f.service.Create(f.tenant.ID, f.property.ID, "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := f.service.Connect(first.ID, f.admin.ID); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	// The one-pending-per-property rule only blocks while a request is
	// PENDING; once connected the tenant may open another.
	if _, err := f.service.Create(f.tenant.ID, f.property.ID, "second"); err != nil {
		t.Fatalf("create after connect failed: %v", err)
	}
}

func TestConnectRejectsNonPendingRequest(t *testing.T) {
	f := newRequestFixture(t)

	request, err := f.service.Create(f.tenant.ID, f.property.ID, "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := f.service.Connect(request.ID, f.admin.ID); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	_, err = f.service.Connect(request.ID, f.admin.ID)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on double connect, got %v", err)
	}

	got, _ := f.requests.GetByID(request.ID)
	if got.Status != domain.RequestConnected {
		t.Fatalf("failed transition must not mutate state, got %s", got.Status)
	}
}

func TestConnectRequiresAdmin(t *testing.T) {
	f := newRequestFixture(t)

	request, err := f.service.Create(f.tenant.ID, f.property.ID, "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = f.service.Connect(request.ID, f.tenant.ID)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for non-admin, got %v", err)
	}
}

func TestCompleteRejectsPendingRequest(t *testing.T) {
	f := newRequestFixture(t)

	request, err := f.service.Create(f.tenant.ID, f.property.ID, "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = f.service.Complete(request.ID)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict for skipping CONNECTED, got %v", err)
	}

	got, _ := f.requests.GetByID(request.ID)
	if got.Status != domain.RequestPending {
		t.Fatalf("failed transition must not mutate state, got %s", got.Status)
	}
	property, _ := f.properties.GetByID(f.property.ID)
	if property.Status != domain.PropertyAvailable {
		t.Fatalf("failed completion must not touch the property, got %s", property.Status)
	}
}

func TestCreateRequestPropagatesStorageErrors(t *testing.T) {
	outage := errors.New("connection refused")
	users := &failingUserRepo{memUserRepo: newMemUserRepo(), err: outage}
	properties := newMemPropertyRepo()
	s := NewRequestService(newMemRequestRepo(properties), users, properties, nil, nil)

	_, err := s.Create("tenant-1", "prop-1", "interested")
	if !errors.Is(err, outage) {
		t.Fatalf("expected the storage error to propagate, got %v", err)
	}
	if errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("storage outage must not be reported as a missing tenant")
	}
}
