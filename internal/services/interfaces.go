package services

import (
	"time"

	"github.com/danielodella-summer87/cafecitos-sub000/internal/models"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/pagination"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/projection"
)

// Actor is the resolved acting identity for a ledger operation: which
// staff login is acting, at which café, with which capabilities, and
// which consumer profile is linked to them (for the self-service
// exclusion). It is resolved fresh per request so capability changes
// take immediate effect.
type Actor struct {
	StaffID   string
	CafeID    string
	ProfileID *string
	CanIssue  bool
	CanRedeem bool
	IsOwner   bool
}

// SubjectQuery holds optional filters for reading a subject's
// transactions from the log.
type SubjectQuery struct {
	CafeID *string
	Since  *time.Time
	Limit  int
}

// TransactionFilter holds optional filter parameters for listing a
// subject's history.
type TransactionFilter struct {
	CafeID   *string
	Type     *models.TxType
	FromDate *time.Time
	ToDate   *time.Time
}

// LedgerServicer is the ledger core: the append-only transaction log,
// the balance projections over it, and the guards that approve writes.
type LedgerServicer interface {
	// Append validates the shape of tx and inserts it. It is the only
	// write path into the log; no update or delete is ever exposed.
	Append(tx *models.PointTransaction) (*models.PointTransaction, error)
	// QueryBySubject returns transactions where the subject is on either
	// leg, newest first.
	QueryBySubject(profileID string, q SubjectQuery) ([]models.PointTransaction, error)

	Balance(profileID string) (int64, error)
	CafeSummary(profileID, cafeID string) (*projection.CafeSummary, error)

	Issue(actor Actor, identityNumber string, amount int64, note string) (*models.PointTransaction, error)
	Redeem(actor Actor, identityNumber string, amount int64, note string) (*models.PointTransaction, error)
	Transfer(actor Actor, fromIdentityNumber, toIdentityNumber string, amount int64, note string) (*models.PointTransaction, *models.PointTransaction, error)
	Adjust(actor Actor, identityNumber string, amount int64, note string) (*models.PointTransaction, error)

	RecentTransactions(profileID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.PointTransaction], error)
}

// DirectoryServicer resolves accounts for the ledger guards.
type DirectoryServicer interface {
	// ResolveConsumer finds the active profile for an identity number
	// and checks it has the consumer role.
	ResolveConsumer(identityNumber string) (*models.Profile, error)
	GetProfileByID(id string) (*models.Profile, error)
}

// PolicyServicer reads global ledger policy.
type PolicyServicer interface {
	// AllowCrossCafeRedeem reads the global flag fresh; a missing
	// settings row means enabled.
	AllowCrossCafeRedeem() (bool, error)
}

// StaffServicer handles staff authentication and actor resolution.
type StaffServicer interface {
	AttemptLogin(email, password string) (*models.StaffMember, error)
	GetStaffByID(id string) (*models.StaffMember, error)
	ActorFor(staff *models.StaffMember) Actor
	StoreRefreshTokenHash(staffID, tokenHash string) error
	GetRefreshTokenHash(staffID string) (string, error)
}

// ReportScope selects the grouping of an aggregate report.
type ReportScope string

const (
	ScopeGlobal      ReportScope = "global"
	ScopePerCafe     ReportScope = "per_cafe"
	ScopePerConsumer ReportScope = "per_consumer"
)

// ReportWindow selects the time window of an aggregate report.
type ReportWindow string

const (
	WindowDay   ReportWindow = "day"
	WindowWeek  ReportWindow = "week"
	WindowMonth ReportWindow = "month"
)

// Duration returns the length of the window.
func (w ReportWindow) Duration() time.Duration {
	switch w {
	case WindowDay:
		return 24 * time.Hour
	case WindowWeek:
		return 7 * 24 * time.Hour
	default:
		return 30 * 24 * time.Hour
	}
}

// RollupRow is one row of an aggregate report: earn vs redeem sums for
// a grouping key. CafeID is set for per-café scope, ProfileID for
// per-consumer scope; both are nil for the global scope.
type RollupRow struct {
	CafeID    *string `json:"cafe_id,omitempty"`
	ProfileID *string `json:"profile_id,omitempty"`
	Earned    int64   `json:"earned"`
	Redeemed  int64   `json:"redeemed"`
	Net       int64   `json:"net"`
}

// ConsumerNet is a top-N report row.
type ConsumerNet struct {
	ProfileID string `json:"profile_id"`
	Earned    int64  `json:"earned"`
	Redeemed  int64  `json:"redeemed"`
	Net       int64  `json:"net"`
}

// CafeAlert flags a café whose recent activity looks wrong: movement
// count down more than 40% versus the prior seven days, or a negative
// seven-day net.
type CafeAlert struct {
	CafeID        string `json:"cafe_id"`
	CafeName      string `json:"cafe_name"`
	Reason        string `json:"reason"`
	CurrentVolume int64  `json:"current_volume"`
	PriorVolume   int64  `json:"prior_volume"`
	Net           int64  `json:"net"`
}

// ReportServicer builds read-only rollups over the same transaction log
// the projections replay. There is no separate source of truth.
type ReportServicer interface {
	Rollup(scope ReportScope, window ReportWindow, cafeID *string) ([]RollupRow, error)
	TopConsumers(window ReportWindow, cafeID *string, limit int) ([]ConsumerNet, error)
	CafeAlerts() ([]CafeAlert, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(staffID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
