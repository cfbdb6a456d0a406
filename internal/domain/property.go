package domain

import "time"

// PropertyType is the closed set of listing types.
type PropertyType string

const (
	PropertyHouse     PropertyType = "HOUSE"
	PropertyApartment PropertyType = "APARTMENT"
	PropertyPlot      PropertyType = "PLOT"
	PropertyRoom      PropertyType = "ROOM"
)

// ValidPropertyType reports whether t is a known property type.
func ValidPropertyType(t PropertyType) bool {
	switch t {
	case PropertyHouse, PropertyApartment, PropertyPlot, PropertyRoom:
		return true
	}
	return false
}

// PropertyStatus is the listing availability state. A property starts
// AVAILABLE and moves to RENTED when a request against it completes; there is
// no automatic reverse transition.
type PropertyStatus string

const (
	PropertyAvailable PropertyStatus = "AVAILABLE"
	PropertyRented    PropertyStatus = "RENTED"
	PropertySold      PropertyStatus = "SOLD"
)

// ValidPropertyStatus reports whether s is a known property status.
func ValidPropertyStatus(s PropertyStatus) bool {
	switch s {
	case PropertyAvailable, PropertyRented, PropertySold:
		return true
	}
	return false
}

// Media is a URL attachment owned by exactly one property. Its lifetime is
// tied to the property (cascade delete at the storage layer).
type Media struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"propertyId"`
	URL        string    `json:"url"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Property represents a rental listing
type Property struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Type      PropertyType   `json:"type"`
	Price     int64          `json:"price"` // smallest currency unit, non-negative
	Location  string         `json:"location"`
	Rooms     int            `json:"rooms"`
	Status    PropertyStatus `json:"status"`
	Verified  bool           `json:"verified"`
	OwnerID   string         `json:"ownerId"` // immutable after creation
	Owner     *UserView      `json:"owner,omitempty"`
	Media     []Media        `json:"media"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// PropertyFilters narrows a property search. Zero values impose no
// constraint; all set filters are AND-combined.
type PropertyFilters struct {
	Type     PropertyType
	MinPrice int64 // inclusive lower bound, 0 = unset
	MaxPrice int64 // inclusive upper bound, 0 = unset
	Location string // case-insensitive substring match
	Rooms    int    // exact match, 0 = unset
	Status   PropertyStatus
	Verified *bool
}

// PropertyPatch is a partial update. Nil fields are left unchanged.
type PropertyPatch struct {
	Title    *string
	Type     *PropertyType
	Price    *int64
	Location *string
	Rooms    *int
	Status   *PropertyStatus
}

// PropertyRepository defines data access for properties and their media
type PropertyRepository interface {
	Create(property *Property) error
	GetByID(id string) (*Property, error)
	Search(filters PropertyFilters, page, pageSize int) ([]*Property, int, error)
	Update(id string, patch PropertyPatch) (*Property, error)
	Verify(id string) (*Property, error)
	ListPendingVerification(page, pageSize int) ([]*Property, int, error)
	ListByOwner(ownerID string) ([]*Property, error)
	AddMedia(media *Media) error
}
