package models

// StaffMember is a login at one café with capability flags controlling
// which ledger operations it may perform. ProfileID links the staff
// member's own consumer profile, which the guards use for the
// self-service exclusion.
type StaffMember struct {
	Base
	CafeID           string  `gorm:"type:uuid;not null;index" json:"cafe_id"`
	ProfileID        *string `gorm:"type:uuid" json:"profile_id,omitempty"`
	Email            string  `gorm:"uniqueIndex;not null" json:"email"`
	Password         string  `gorm:"not null" json:"-"`
	DisplayName      string  `json:"display_name"`
	CanIssue         bool    `gorm:"default:false" json:"can_issue"`
	CanRedeem        bool    `gorm:"default:false" json:"can_redeem"`
	IsOwner          bool    `gorm:"default:false" json:"is_owner"`
	IsActive         bool    `gorm:"default:true" json:"is_active"`
	RefreshTokenHash string  `gorm:"size:64" json:"-"`

	// Relationships
	Cafe    *Cafe    `gorm:"foreignKey:CafeID" json:"cafe,omitempty"`
	Profile *Profile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
}
