package models

import (
	"time"

	"github.com/danielodella-summer87/cafecitos-sub000/internal/uuid"

	"gorm.io/gorm"
)

// TxType identifies the kind of point movement recorded in the ledger.
type TxType string

const (
	TxTypeEarn        TxType = "earn"
	TxTypeRedeem      TxType = "redeem"
	TxTypeTransferOut TxType = "transfer_out"
	TxTypeTransferIn  TxType = "transfer_in"
	TxTypeAdjust      TxType = "adjust"
)

// Leg is the side of a balance a transaction type moves.
type Leg int

const (
	LegCredit Leg = iota
	LegDebit
)

// txLegs maps every transaction type to its leg. All sign rules in the
// system derive from this table: credit types populate ToProfileID,
// debit types populate FromProfileID, and a transaction never encodes
// its own sign.
var txLegs = map[TxType]Leg{
	TxTypeEarn:        LegCredit,
	TxTypeAdjust:      LegCredit,
	TxTypeTransferIn:  LegCredit,
	TxTypeRedeem:      LegDebit,
	TxTypeTransferOut: LegDebit,
}

// Valid reports whether t is a known transaction type.
func (t TxType) Valid() bool {
	_, ok := txLegs[t]
	return ok
}

// Credits reports whether t credits its ToProfileID.
func (t TxType) Credits() bool {
	return txLegs[t] == LegCredit && t.Valid()
}

// Debits reports whether t debits its FromProfileID.
func (t TxType) Debits() bool {
	return txLegs[t] == LegDebit
}

// PointTransaction is an immutable row in the cafecito ledger. Rows are
// only ever inserted; corrections are new adjust rows. Amount is always
// positive, direction comes from the type's leg.
type PointTransaction struct {
	ID                  string    `gorm:"type:uuid;primaryKey" json:"id"`
	Type                TxType    `gorm:"column:tx_type;not null;index" json:"tx_type"`
	CafeID              *string   `gorm:"type:uuid;index" json:"cafe_id,omitempty"`
	FromProfileID       *string   `gorm:"type:uuid;index" json:"from_profile_id,omitempty"`
	ToProfileID         *string   `gorm:"type:uuid;index" json:"to_profile_id,omitempty"`
	Amount              int64     `gorm:"type:bigint;not null" json:"amount"`
	Note                string    `json:"note"`
	ActorOwnerProfileID *string   `gorm:"type:uuid" json:"actor_owner_profile_id,omitempty"`
	ActorStaffID        *string   `gorm:"type:uuid" json:"actor_staff_id,omitempty"`
	CreatedAt           time.Time `gorm:"not null;index" json:"created_at"`

	Cafe *Cafe `gorm:"foreignKey:CafeID" json:"cafe,omitempty"`
}

// BeforeCreate hook generates a UUIDv7 for new ledger rows.
func (p *PointTransaction) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New()
	}
	return nil
}

// Subject returns the profile whose balance this transaction moves:
// the credited side for credit types, the debited side for debit types.
func (p *PointTransaction) Subject() *string {
	if p.Type.Credits() {
		return p.ToProfileID
	}
	return p.FromProfileID
}
