package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/danielodella-summer87/cafecitos-sub000/internal/errors"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/logger"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/uuid"
)

// getStaffID extracts the authenticated staff ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getStaffID(c *gin.Context) (string, error) {
	staffID, exists := c.Get("staffID")
	if !exists {
		return "", apperrors.ErrUnauthorized
	}
	return staffID.(string), nil
}

// parsePathUUID parses a UUID path parameter.
func parsePathUUID(c *gin.Context, param string) (string, error) {
	id := c.Param(param)
	if !uuid.IsValid(id) {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// parseTimeParam parses an optional RFC 3339 query parameter.
func parseTimeParam(c *gin.Context, param string) (*time.Time, error) {
	raw := c.Query(param)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param+": expected RFC 3339 timestamp")
	}
	return &t, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}

// ErrorResponse documents the error envelope for swagger.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
