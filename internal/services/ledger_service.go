package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "github.com/danielodella-summer87/cafecitos-sub000/internal/errors"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/models"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/pagination"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/projection"
)

// Default notes applied when the operator leaves the field empty. These
// are shown in consumer history, so they are user-facing text.
const (
	defaultIssueNote    = "Cafecitos sumados"
	defaultRedeemNote   = "Canje de cafecitos"
	defaultTransferNote = "Transferencia de cafecitos"
	defaultAdjustNote   = "Ajuste administrativo"
)

// ledgerService owns the append-only transaction log and the guards
// that approve writes to it. Balances are always replayed from the log
// through the projection package, never read from a stored column.
type ledgerService struct {
	db        *gorm.DB
	directory DirectoryServicer
	policy    PolicyServicer
	locks     subjectLocks
}

// NewLedgerService creates a new LedgerServicer.
func NewLedgerService(db *gorm.DB, directory DirectoryServicer, policy PolicyServicer) LedgerServicer {
	return &ledgerService{
		db:        db,
		directory: directory,
		policy:    policy,
	}
}

// validateShape rejects transactions whose amount or from/to population
// does not match the type's leg. A row that fails here is never written.
func validateShape(tx *models.PointTransaction) error {
	if !tx.Type.Valid() {
		return apperrors.WithMessage(apperrors.ErrValidation, "unknown transaction type")
	}
	if tx.Amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrValidation, "amount must be greater than zero")
	}
	switch {
	case tx.Type.Credits():
		if tx.ToProfileID == nil || tx.FromProfileID != nil {
			return apperrors.WithMessage(apperrors.ErrValidation, "credit transactions require to_profile_id only")
		}
	case tx.Type.Debits():
		if tx.FromProfileID == nil || tx.ToProfileID != nil {
			return apperrors.WithMessage(apperrors.ErrValidation, "debit transactions require from_profile_id only")
		}
	}
	return nil
}

// Append validates and inserts a single transaction. This is the only
// write path into the log.
func (s *ledgerService) Append(tx *models.PointTransaction) (*models.PointTransaction, error) {
	if err := validateShape(tx); err != nil {
		return nil, err
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	if err := s.db.Create(tx).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}
	return tx, nil
}

// subjectScope filters the log to rows where the profile is on either leg.
func subjectScope(db *gorm.DB, profileID string) *gorm.DB {
	return db.Model(&models.PointTransaction{}).
		Where("from_profile_id = ? OR to_profile_id = ?", profileID, profileID)
}

// QueryBySubject returns the subject's transactions newest first,
// optionally filtered by café and time window.
func (s *ledgerService) QueryBySubject(profileID string, q SubjectQuery) ([]models.PointTransaction, error) {
	query := subjectScope(s.db, profileID)
	if q.CafeID != nil {
		query = query.Where("cafe_id = ?", *q.CafeID)
	}
	if q.Since != nil {
		query = query.Where("created_at >= ?", *q.Since)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var txs []models.PointTransaction
	if err := query.Order("created_at DESC").Find(&txs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}
	return txs, nil
}

// Balance replays the subject's full history into its global balance.
func (s *ledgerService) Balance(profileID string) (int64, error) {
	txs, err := s.QueryBySubject(profileID, SubjectQuery{})
	if err != nil {
		return 0, err
	}
	return projection.Balance(profileID, txs), nil
}

// CafeSummary computes the café-scoped earned/redeemed/available
// figures for one (subject, café) pair.
func (s *ledgerService) CafeSummary(profileID, cafeID string) (*projection.CafeSummary, error) {
	txs, err := s.QueryBySubject(profileID, SubjectQuery{CafeID: &cafeID})
	if err != nil {
		return nil, err
	}
	summary := projection.SummarizeCafe(profileID, cafeID, txs)
	return &summary, nil
}

// actorFields returns the audit columns for a transaction performed by
// the actor. Owners are recorded by their profile, staff by their login.
func actorFields(actor Actor) (ownerProfileID, staffID *string) {
	if actor.IsOwner && actor.ProfileID != nil {
		return actor.ProfileID, nil
	}
	id := actor.StaffID
	return nil, &id
}

// rejectSelfService enforces the self-crediting rule: a staff member or
// owner whose linked consumer profile is the target, acting within
// their own café, is always rejected.
func rejectSelfService(actor Actor, target *models.Profile) error {
	if actor.ProfileID != nil && *actor.ProfileID == target.ID {
		return apperrors.ErrSelfServiceForbidden
	}
	return nil
}

// Issue appends an earn transaction after the issuance guard passes.
// Earning has no upper bound, so no balance check is involved.
func (s *ledgerService) Issue(actor Actor, identityNumber string, amount int64, note string) (*models.PointTransaction, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "amount must be greater than zero")
	}
	if !actor.CanIssue {
		return nil, apperrors.ErrPermissionDenied
	}

	consumer, err := s.directory.ResolveConsumer(identityNumber)
	if err != nil {
		return nil, err
	}
	if err := rejectSelfService(actor, consumer); err != nil {
		return nil, err
	}

	if note == "" {
		note = defaultIssueNote
	}
	ownerID, staffID := actorFields(actor)
	cafeID := actor.CafeID

	return s.Append(&models.PointTransaction{
		Type:                models.TxTypeEarn,
		CafeID:              &cafeID,
		ToProfileID:         &consumer.ID,
		Amount:              amount,
		Note:                note,
		ActorOwnerProfileID: ownerID,
		ActorStaffID:        staffID,
	})
}

// Redeem appends a redeem transaction after the redemption guard
// passes. The balance check and the append run under the subject's
// lock: two concurrent redemptions against the same consumer are
// serialized, so their combined amount can never exceed the balance.
func (s *ledgerService) Redeem(actor Actor, identityNumber string, amount int64, note string) (*models.PointTransaction, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "amount must be greater than zero")
	}
	if !actor.CanRedeem {
		return nil, apperrors.ErrPermissionDenied
	}

	consumer, err := s.directory.ResolveConsumer(identityNumber)
	if err != nil {
		return nil, err
	}
	if err := rejectSelfService(actor, consumer); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(consumer.ID)
	defer unlock()

	balance, err := s.Balance(consumer.ID)
	if err != nil {
		return nil, err
	}
	if amount > balance {
		return nil, apperrors.ErrInsufficientBalance
	}

	allowCross, err := s.policy.AllowCrossCafeRedeem()
	if err != nil {
		return nil, err
	}
	if !allowCross {
		summary, err := s.CafeSummary(consumer.ID, actor.CafeID)
		if err != nil {
			return nil, err
		}
		if amount > summary.Available {
			return nil, apperrors.ErrInsufficientCafeBalance
		}
	}

	if note == "" {
		note = defaultRedeemNote
	}
	ownerID, staffID := actorFields(actor)
	cafeID := actor.CafeID

	return s.Append(&models.PointTransaction{
		Type:                models.TxTypeRedeem,
		CafeID:              &cafeID,
		FromProfileID:       &consumer.ID,
		Amount:              amount,
		Note:                note,
		ActorOwnerProfileID: ownerID,
		ActorStaffID:        staffID,
	})
}

// Transfer moves points between two consumers as an atomic
// transfer_out/transfer_in pair with equal amount and timestamp, so
// replaying either side always conserves the combined balance. The
// source's global balance guards the debit.
func (s *ledgerService) Transfer(actor Actor, fromIdentityNumber, toIdentityNumber string, amount int64, note string) (*models.PointTransaction, *models.PointTransaction, error) {
	if amount <= 0 {
		return nil, nil, apperrors.WithMessage(apperrors.ErrValidation, "amount must be greater than zero")
	}
	if !actor.CanRedeem {
		// Moving points out of an account is gated like a redemption.
		return nil, nil, apperrors.ErrPermissionDenied
	}

	source, err := s.directory.ResolveConsumer(fromIdentityNumber)
	if err != nil {
		return nil, nil, err
	}
	dest, err := s.directory.ResolveConsumer(toIdentityNumber)
	if err != nil {
		return nil, nil, err
	}
	if source.ID == dest.ID {
		return nil, nil, apperrors.ErrSameProfileTransfer
	}

	unlock := s.locks.lock(source.ID, dest.ID)
	defer unlock()

	balance, err := s.Balance(source.ID)
	if err != nil {
		return nil, nil, err
	}
	if amount > balance {
		return nil, nil, apperrors.ErrInsufficientBalance
	}

	if note == "" {
		note = defaultTransferNote
	}
	ownerID, staffID := actorFields(actor)
	cafeID := actor.CafeID
	now := time.Now()

	out := &models.PointTransaction{
		Type:                models.TxTypeTransferOut,
		CafeID:              &cafeID,
		FromProfileID:       &source.ID,
		Amount:              amount,
		Note:                note,
		ActorOwnerProfileID: ownerID,
		ActorStaffID:        staffID,
		CreatedAt:           now,
	}
	in := &models.PointTransaction{
		Type:                models.TxTypeTransferIn,
		CafeID:              &cafeID,
		ToProfileID:         &dest.ID,
		Amount:              amount,
		Note:                note,
		ActorOwnerProfileID: ownerID,
		ActorStaffID:        staffID,
		CreatedAt:           now,
	}
	if err := validateShape(out); err != nil {
		return nil, nil, err
	}
	if err := validateShape(in); err != nil {
		return nil, nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(out).Error; err != nil {
			return err
		}
		return tx.Create(in).Error
	})
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}
	return out, in, nil
}

// Adjust appends an administrative adjust credit. Corrections never
// mutate history: compensating for a mistaken row means adding another.
func (s *ledgerService) Adjust(actor Actor, identityNumber string, amount int64, note string) (*models.PointTransaction, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "amount must be greater than zero")
	}
	if !actor.IsOwner {
		return nil, apperrors.ErrPermissionDenied
	}

	consumer, err := s.directory.ResolveConsumer(identityNumber)
	if err != nil {
		return nil, err
	}

	if note == "" {
		note = defaultAdjustNote
	}
	ownerID, staffID := actorFields(actor)
	cafeID := actor.CafeID

	return s.Append(&models.PointTransaction{
		Type:                models.TxTypeAdjust,
		CafeID:              &cafeID,
		ToProfileID:         &consumer.ID,
		Amount:              amount,
		Note:                note,
		ActorOwnerProfileID: ownerID,
		ActorStaffID:        staffID,
	})
}

// RecentTransactions retrieves a paginated, filtered slice of the
// subject's history, newest first.
func (s *ledgerService) RecentTransactions(profileID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.PointTransaction], error) {
	page.Defaults()

	base := subjectScope(s.db, profileID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}

	var txs []models.PointTransaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("created_at DESC").
		Find(&txs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}

	result := pagination.NewPageResponse(txs, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.CafeID != nil {
		q = q.Where("cafe_id = ?", *f.CafeID)
	}
	if f.Type != nil {
		q = q.Where("tx_type = ?", *f.Type)
	}
	if f.FromDate != nil {
		q = q.Where("created_at >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("created_at <= ?", *f.ToDate)
	}
	return q
}
