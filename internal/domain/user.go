package domain

import "time"

// Role is the closed set of user roles. It is fixed at registration and
// never changes afterwards.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleCommissioner Role = "COMMISSIONER"
	RoleLandlord     Role = "LANDLORD"
	RoleTenant       Role = "TENANT"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleCommissioner, RoleLandlord, RoleTenant:
		return true
	}
	return false
}

// RegistrableRole reports whether r may be chosen through self-registration.
// ADMIN accounts are provisioned out of band, never through the public API.
func RegistrableRole(r Role) bool {
	switch r {
	case RoleCommissioner, RoleLandlord, RoleTenant:
		return true
	}
	return false
}

// User represents a platform user
type User struct {
	ID           string // UUID
	Name         string
	Phone        string // Unique phone number
	Role         Role
	PasswordHash string // Bcrypt hashed password (never serialized)
	NationalID   string // Optional national-id string
	Verified     bool   // Admin-attested trust flag, starts false
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserView is the public projection of a User. It is the only user shape
// handlers serialize, so a sensitive field added to User can never leak
// through a forgotten call site.
type UserView struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Role       Role      `json:"role"`
	NationalID string    `json:"nationalId,omitempty"`
	Verified   bool      `json:"verified"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// View returns the public projection of the user.
func (u *User) View() *UserView {
	if u == nil {
		return nil
	}
	return &UserView{
		ID:         u.ID,
		Name:       u.Name,
		Phone:      u.Phone,
		Role:       u.Role,
		NationalID: u.NationalID,
		Verified:   u.Verified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// UserViews projects a slice of users.
func UserViews(users []*User) []*UserView {
	out := make([]*UserView, 0, len(users))
	for _, u := range users {
		out = append(out, u.View())
	}
	return out
}

// UserRepository defines data access for users
type UserRepository interface {
	Create(user *User) error
	GetByID(id string) (*User, error)
	GetByPhone(phone string) (*User, error)
	Verify(id string) (*User, error)
	ListPendingVerification(page, pageSize int) ([]*User, int, error)
}
