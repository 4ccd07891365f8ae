package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/danielodella-summer87/cafecitos-sub000/internal/errors"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/services"
)

// ReportHandler handles read-only aggregate reports for dashboards.
type ReportHandler struct {
	reportService services.ReportServicer
	staffService  services.StaffServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer, staffService services.StaffServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService, staffService: staffService}
}

// requireOwner resolves the actor and rejects non-owner logins.
// Reports expose cross-café data, which staff terminals never see.
func (h *ReportHandler) requireOwner(c *gin.Context) error {
	staffID, err := getStaffID(c)
	if err != nil {
		return err
	}
	staff, err := h.staffService.GetStaffByID(staffID)
	if err != nil {
		return apperrors.ErrUnauthorized
	}
	if !staff.IsOwner {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

// RollupQuery represents the rollup query parameters.
type RollupQuery struct {
	Scope  string `form:"scope" binding:"required,report_scope"`
	Window string `form:"window" binding:"required,report_window"`
	CafeID string `form:"cafe_id"`
}

// Rollup returns earn-vs-redeem sums for a scope and window
// @Summary     Aggregate report
// @Description Earn vs redeem rollup, global, per café, or per consumer
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       scope query string true "global, per_cafe or per_consumer"
// @Param       window query string true "day, week or month"
// @Param       cafe_id query string false "Restrict to one café"
// @Success     200 {array} services.RollupRow "Rollup rows"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Router      /reports/rollup [get]
func (h *ReportHandler) Rollup(c *gin.Context) {
	if err := h.requireOwner(c); err != nil {
		respondWithError(c, err)
		return
	}

	var q RollupQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var cafeID *string
	if q.CafeID != "" {
		cafeID = &q.CafeID
	}

	rows, err := h.reportService.Rollup(services.ReportScope(q.Scope), services.ReportWindow(q.Window), cafeID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// TopConsumers returns the consumers with the highest net movement
// @Summary     Top consumers
// @Description Consumers ranked by net (earned - redeemed) within a window
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       window query string true "day, week or month"
// @Param       cafe_id query string false "Restrict to one café"
// @Param       limit query int false "Number of rows (default 10)"
// @Success     200 {array} services.ConsumerNet "Ranked consumers"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Router      /reports/top-consumers [get]
func (h *ReportHandler) TopConsumers(c *gin.Context) {
	if err := h.requireOwner(c); err != nil {
		respondWithError(c, err)
		return
	}

	window := services.ReportWindow(c.DefaultQuery("window", "week"))
	switch window {
	case services.WindowDay, services.WindowWeek, services.WindowMonth:
	default:
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid window"))
		return
	}

	var cafeID *string
	if raw := c.Query("cafe_id"); raw != "" {
		cafeID = &raw
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid limit"))
			return
		}
		limit = parsed
	}

	rows, err := h.reportService.TopConsumers(window, cafeID, limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// Alerts returns cafés flagged by the activity heuristics
// @Summary     Café alerts
// @Description Cafés with a >40% seven-day activity drop or negative seven-day net
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} services.CafeAlert "Flagged cafés"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Router      /reports/alerts [get]
func (h *ReportHandler) Alerts(c *gin.Context) {
	if err := h.requireOwner(c); err != nil {
		respondWithError(c, err)
		return
	}

	alerts, err := h.reportService.CafeAlerts()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}
