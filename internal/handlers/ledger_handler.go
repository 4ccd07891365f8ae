package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/danielodella-summer87/cafecitos-sub000/internal/errors"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/models"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/pagination"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/services"
)

// LedgerHandler handles point issuance, redemption, transfers and
// balance reads. The acting identity is resolved fresh from the staff
// service on every request so capability changes apply immediately.
type LedgerHandler struct {
	ledgerService services.LedgerServicer
	staffService  services.StaffServicer
	auditService  services.AuditServicer
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerService services.LedgerServicer, staffService services.StaffServicer, auditService services.AuditServicer) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
		staffService:  staffService,
		auditService:  auditService,
	}
}

// resolveActor loads the acting staff member and builds its Actor.
func (h *LedgerHandler) resolveActor(c *gin.Context) (services.Actor, error) {
	staffID, err := getStaffID(c)
	if err != nil {
		return services.Actor{}, err
	}
	staff, err := h.staffService.GetStaffByID(staffID)
	if err != nil {
		return services.Actor{}, apperrors.ErrUnauthorized
	}
	return h.staffService.ActorFor(staff), nil
}

// PointRequest represents the payload for issue, redeem and adjust.
type PointRequest struct {
	IdentityNumber string `json:"identity_number" binding:"required,identity_number"`
	Amount         int64  `json:"amount" binding:"required,gt=0"`
	Note           string `json:"note" binding:"max=500"`
}

// Issue awards cafecitos to a consumer
// @Summary     Issue cafecitos
// @Description Award points to the consumer matching the identity number
// @Tags        points
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body PointRequest true "Issue details"
// @Success     201 {object} models.PointTransaction "Appended earn transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Permission denied or self-service"
// @Failure     404 {object} ErrorResponse "Consumer not found"
// @Router      /points/issue [post]
func (h *LedgerHandler) Issue(c *gin.Context) {
	actor, err := h.resolveActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	tx, err := h.ledgerService.Issue(actor, req.IdentityNumber, req.Amount, req.Note)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.StaffID, "ISSUE_POINTS", "point_transaction", tx.ID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount, "cafe_id": actor.CafeID})

	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}

// Redeem spends a consumer's cafecitos
// @Summary     Redeem cafecitos
// @Description Redeem points from the consumer matching the identity number
// @Tags        points
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body PointRequest true "Redemption details"
// @Success     201 {object} models.PointTransaction "Appended redeem transaction"
// @Failure     400 {object} ErrorResponse "Insufficient balance"
// @Failure     403 {object} ErrorResponse "Permission denied or self-service"
// @Failure     404 {object} ErrorResponse "Consumer not found"
// @Router      /points/redeem [post]
func (h *LedgerHandler) Redeem(c *gin.Context) {
	actor, err := h.resolveActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	tx, err := h.ledgerService.Redeem(actor, req.IdentityNumber, req.Amount, req.Note)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.StaffID, "REDEEM_POINTS", "point_transaction", tx.ID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount, "cafe_id": actor.CafeID})

	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}

// TransferRequest represents the payload for a transfer between consumers.
type TransferRequest struct {
	FromIdentityNumber string `json:"from_identity_number" binding:"required,identity_number"`
	ToIdentityNumber   string `json:"to_identity_number" binding:"required,identity_number"`
	Amount             int64  `json:"amount" binding:"required,gt=0"`
	Note               string `json:"note" binding:"max=500"`
}

// Transfer moves cafecitos between two consumers
// @Summary     Transfer cafecitos
// @Description Move points from one consumer to another as an atomic pair
// @Tags        points
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TransferRequest true "Transfer details"
// @Success     201 {object} map[string]interface{} "Appended transfer pair"
// @Failure     400 {object} ErrorResponse "Insufficient balance or same account"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Router      /points/transfer [post]
func (h *LedgerHandler) Transfer(c *gin.Context) {
	actor, err := h.resolveActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	out, in, err := h.ledgerService.Transfer(actor, req.FromIdentityNumber, req.ToIdentityNumber, req.Amount, req.Note)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.StaffID, "TRANSFER_POINTS", "point_transaction", out.ID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount, "in_transaction_id": in.ID})

	c.JSON(http.StatusCreated, gin.H{"transfer_out": out, "transfer_in": in})
}

// Adjust appends an administrative credit
// @Summary     Adjust balance
// @Description Append an administrative adjust credit to a consumer (owners only)
// @Tags        points
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body PointRequest true "Adjustment details"
// @Success     201 {object} models.PointTransaction "Appended adjust transaction"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Router      /points/adjust [post]
func (h *LedgerHandler) Adjust(c *gin.Context) {
	actor, err := h.resolveActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	tx, err := h.ledgerService.Adjust(actor, req.IdentityNumber, req.Amount, req.Note)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.StaffID, "ADJUST_POINTS", "point_transaction", tx.ID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount})

	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}

// BalanceResponse is the consumer balance payload.
type BalanceResponse struct {
	ProfileID string `json:"profile_id"`
	Balance   int64  `json:"balance"`
}

// GetBalance returns a consumer's global balance
// @Summary     Get global balance
// @Description Replay the full transaction history for a profile into its balance
// @Tags        points
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Profile ID"
// @Success     200 {object} BalanceResponse "Current balance"
// @Failure     400 {object} ErrorResponse "Invalid profile ID"
// @Router      /profiles/{id}/balance [get]
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	if _, err := h.resolveActor(c); err != nil {
		respondWithError(c, err)
		return
	}

	profileID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	balance, err := h.ledgerService.Balance(profileID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, BalanceResponse{ProfileID: profileID, Balance: balance})
}

// GetCafeSummary returns the café-scoped earned/redeemed/available figures
// @Summary     Get café-scoped summary
// @Description Earned, redeemed and available points for a (profile, café) pair
// @Tags        points
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Profile ID"
// @Param       cafeId path string true "Cafe ID"
// @Success     200 {object} projection.CafeSummary "Café-scoped summary"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Router      /profiles/{id}/cafes/{cafeId}/summary [get]
func (h *LedgerHandler) GetCafeSummary(c *gin.Context) {
	if _, err := h.resolveActor(c); err != nil {
		respondWithError(c, err)
		return
	}

	profileID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	cafeID, err := parsePathUUID(c, "cafeId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.ledgerService.CafeSummary(profileID, cafeID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetTransactions returns a consumer's history, newest first
// @Summary     List transactions
// @Description Paginated transaction history for a profile
// @Tags        points
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Profile ID"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       cafe_id query string false "Filter by café"
// @Param       tx_type query string false "Filter by transaction type"
// @Param       from query string false "RFC 3339 lower bound"
// @Param       to query string false "RFC 3339 upper bound"
// @Success     200 {object} pagination.PageResponse[models.PointTransaction] "Transaction page"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /profiles/{id}/transactions [get]
func (h *LedgerHandler) GetTransactions(c *gin.Context) {
	if _, err := h.resolveActor(c); err != nil {
		respondWithError(c, err)
		return
	}

	profileID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter services.TransactionFilter
	if cafeID := c.Query("cafe_id"); cafeID != "" {
		filter.CafeID = &cafeID
	}
	if rawType := c.Query("tx_type"); rawType != "" {
		txType := models.TxType(rawType)
		if !txType.Valid() {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid tx_type"))
			return
		}
		filter.Type = &txType
	}
	if filter.FromDate, err = parseTimeParam(c, "from"); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.ToDate, err = parseTimeParam(c, "to"); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.ledgerService.RecentTransactions(profileID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
