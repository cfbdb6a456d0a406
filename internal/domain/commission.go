package domain

import "time"

// Commission records a brokered deal. Amount and fee are persisted at
// creation and never recomputed or updated afterwards.
type Commission struct {
	ID             string    `json:"id"`
	PropertyID     string    `json:"propertyId"`
	CommissionerID string    `json:"commissionerId"`
	Amount         int64     `json:"amount"` // smallest currency unit, non-negative
	Fee            int64     `json:"fee"`    // platform share, computed once at creation
	Commissioner   *UserView `json:"commissioner,omitempty"`
	Property       *Property `json:"property,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// CommissionFilters narrows a commission search. Zero values impose no
// constraint.
type CommissionFilters struct {
	CommissionerID string
	PropertyID     string
}

// CommissionRepository defines data access for commissions
type CommissionRepository interface {
	Create(commission *Commission) error
	GetByID(id string) (*Commission, error)
	Search(filters CommissionFilters, page, pageSize int) ([]*Commission, int, error)
}

// Stats is the read-only aggregate served to administrators.
type Stats struct {
	TotalUsers            int   `json:"totalUsers"`
	TotalProperties       int   `json:"totalProperties"`
	TotalRequests         int   `json:"totalRequests"`
	TotalCommissions      int   `json:"totalCommissions"`
	PendingUsers          int   `json:"pendingUsers"`
	PendingProperties     int   `json:"pendingProperties"`
	PendingRequests       int   `json:"pendingRequests"`
	TotalCommissionAmount int64 `json:"totalCommissionAmount"`
	TotalPlatformFee      int64 `json:"totalPlatformFee"`
}

// StatsRepository aggregates entity counts and commission sums
type StatsRepository interface {
	GetStats() (*Stats, error)
}
