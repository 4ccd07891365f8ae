package models

import (
	"time"

	"github.com/danielodella-summer87/cafecitos-sub000/internal/uuid"

	"gorm.io/gorm"
)

// Base contains common columns for directory tables (profiles, cafes,
// staff, settings). The point transaction log deliberately does not use
// it: ledger rows are append-only and never carry update or delete
// timestamps.
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}
