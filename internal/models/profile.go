package models

// Role classifies an account in the directory.
type Role string

const (
	RoleConsumer Role = "consumer"
	RoleOwner    Role = "owner"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleConsumer, RoleOwner, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// Profile is an account in the directory. Consumers are the only
// profiles whose cafecito balance the ledger tracks; owners, staff and
// admins act on the ledger but never hold points through their
// non-consumer roles.
type Profile struct {
	Base
	IdentityNumber string `gorm:"uniqueIndex;not null" json:"identity_number"`
	Role           Role   `gorm:"not null" json:"role"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	IsActive       bool   `gorm:"default:true" json:"is_active"`
}
