package models

// AuditLog records who performed a ledger action, from where, and with
// what parameters. Separate from the point transaction log: audit rows
// carry request context, ledger rows carry only the movement itself.
type AuditLog struct {
	Base
	StaffID      string `gorm:"type:uuid;not null;index" json:"staff_id"`
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   string `gorm:"type:uuid" json:"resource_id"`
	IPAddress    string `json:"ip_address"`
	Changes      string `gorm:"type:text" json:"changes"`
}
