package domain

// Technician is a roster entry. Tickets refer to technicians by ID only.
type Technician struct {
	ID   string
	Name string
}

// Role is the application role carried in an access token.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "technician"
	RoleUser       Role = "user"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleTechnician, RoleUser:
		return true
	}
	return false
}

// Actor identifies the caller of a service operation.
type Actor struct {
	UserID string
	Role   Role
}
