package domain

import "time"

// RequestStatus is the rental-interest workflow state. Transitions are
// forward-only: PENDING -> CONNECTED -> COMPLETED. No state is ever skipped
// and there is no backward transition.
type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestConnected RequestStatus = "CONNECTED"
	RequestCompleted RequestStatus = "COMPLETED"
)

// ValidRequestStatus reports whether s is a known request status.
func ValidRequestStatus(s RequestStatus) bool {
	switch s {
	case RequestPending, RequestConnected, RequestCompleted:
		return true
	}
	return false
}

// Request is a tenant's expression of interest in a property. tenantId and
// propertyId are immutable; adminId is set exactly once, when an admin
// connects the two parties.
type Request struct {
	ID         string        `json:"id"`
	TenantID   string        `json:"tenantId"`
	PropertyID string        `json:"propertyId"`
	AdminID    string        `json:"adminId,omitempty"`
	Status     RequestStatus `json:"status"`
	Message    string        `json:"message,omitempty"`
	Tenant     *UserView     `json:"tenant,omitempty"`
	Property   *Property     `json:"property,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// RequestFilters narrows a request search. Zero values impose no constraint.
type RequestFilters struct {
	Status     RequestStatus
	TenantID   string
	PropertyID string
}

// RequestRepository defines data access for rental requests
type RequestRepository interface {
	Create(request *Request) error
	GetByID(id string) (*Request, error)
	Search(filters RequestFilters, page, pageSize int) ([]*Request, int, error)
	// Connect moves a request to CONNECTED and records the mediating admin.
	Connect(id, adminID string) (*Request, error)
	// Complete moves the request to COMPLETED and the linked property to
	// RENTED in a single transaction: either both writes take effect or
	// neither does.
	Complete(id string) (*Request, error)
}
