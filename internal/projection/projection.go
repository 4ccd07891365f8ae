// Package projection computes derived balances by replaying point
// transactions. Balances are never stored: every figure in the system
// comes from these replays over the append-only log, so consumer views,
// guard checks, and reports can never disagree.
//
// All functions are pure: no I/O, no side effects, deterministic, and
// order-independent (summation is commutative).
package projection

import (
	"github.com/danielodella-summer87/cafecitos-sub000/internal/models"
)

// Balance replays txs and returns the signed global balance for the
// subject profile. Credit types (earn, adjust, transfer_in) add when the
// subject is on the receiving side; debit types (redeem, transfer_out)
// subtract when the subject is on the paying side. Rows that match
// neither leg for the subject are ignored, which keeps the replay total
// even over malformed legacy data.
func Balance(subjectID string, txs []models.PointTransaction) int64 {
	var balance int64
	for i := range txs {
		tx := &txs[i]
		switch {
		case tx.Type.Credits() && tx.ToProfileID != nil && *tx.ToProfileID == subjectID:
			balance += tx.Amount
		case tx.Type.Debits() && tx.FromProfileID != nil && *tx.FromProfileID == subjectID:
			balance -= tx.Amount
		}
	}
	return balance
}

// CafeSummary holds the café-scoped figures for one (subject, café)
// pair. Available may be negative on legacy data where more was
// redeemed at a café than earned there; the redemption guard re-checks
// before approving anything.
type CafeSummary struct {
	Earned    int64 `json:"earned"`
	Redeemed  int64 `json:"redeemed"`
	Available int64 `json:"available"`
}

// SummarizeCafe computes how much the subject earned and redeemed at
// one café. Only earn rows count toward the café-scoped earned figure:
// adjust and transfer_in credit the global balance but are
// café-agnostic, so they never add spendable-here points.
func SummarizeCafe(subjectID, cafeID string, txs []models.PointTransaction) CafeSummary {
	var s CafeSummary
	for i := range txs {
		tx := &txs[i]
		if tx.CafeID == nil || *tx.CafeID != cafeID {
			continue
		}
		switch {
		case tx.Type == models.TxTypeEarn && tx.ToProfileID != nil && *tx.ToProfileID == subjectID:
			s.Earned += tx.Amount
		case tx.Type == models.TxTypeRedeem && tx.FromProfileID != nil && *tx.FromProfileID == subjectID:
			s.Redeemed += tx.Amount
		}
	}
	s.Available = s.Earned - s.Redeemed
	return s
}

// TotalRedeemed returns the sum of redeem debits for the subject across
// all cafés.
func TotalRedeemed(subjectID string, txs []models.PointTransaction) int64 {
	var total int64
	for i := range txs {
		tx := &txs[i]
		if tx.Type == models.TxTypeRedeem && tx.FromProfileID != nil && *tx.FromProfileID == subjectID {
			total += tx.Amount
		}
	}
	return total
}

// TotalEarned returns the sum of earn credits for the subject across
// all cafés.
func TotalEarned(subjectID string, txs []models.PointTransaction) int64 {
	var total int64
	for i := range txs {
		tx := &txs[i]
		if tx.Type == models.TxTypeEarn && tx.ToProfileID != nil && *tx.ToProfileID == subjectID {
			total += tx.Amount
		}
	}
	return total
}
