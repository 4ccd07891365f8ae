package models

// Cafe represents an affiliated café where cafecitos are issued and
// redeemed.
type Cafe struct {
	Base
	Name           string `gorm:"not null" json:"name"`
	Address        string `json:"address"`
	OwnerProfileID string `gorm:"type:uuid;not null" json:"owner_profile_id"`
	IsActive       bool   `gorm:"default:true" json:"is_active"`

	// Relationships
	Staff []StaffMember `gorm:"foreignKey:CafeID" json:"staff,omitempty"`
}
