package models

// Setting is the single-row global settings record. AllowCrossCafeRedeem
// controls whether the redemption guard checks only the global balance
// (true) or also the café-scoped balance (false). The resolver reads it
// fresh on every redemption attempt and treats a missing row as true.
type Setting struct {
	Base
	AllowCrossCafeRedeem bool `gorm:"not null;default:true" json:"allow_cross_cafe_redeem"`
}
