package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plakor-mes/assy-dashboard/internal/apperrors"
)

// successEnvelope is the uniform success payload shape.
type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// errorEnvelope is the uniform failure payload shape. Category is a stable
// machine-readable discriminator; Error is for people.
type errorEnvelope struct {
	Success  bool   `json:"success"`
	Error    string `json:"error"`
	Category string `json:"category"`
}

func respondSuccess(c *gin.Context, status int, data any) {
	c.JSON(status, successEnvelope{Success: true, Data: data})
}

func respondError(c *gin.Context, status int, category, message string) {
	c.JSON(status, errorEnvelope{Success: false, Error: message, Category: category})
}

// respondServiceError maps a service error to its HTTP status and envelope.
// Unrecognized errors become a generic 500 with the fallback message so
// internals never leak to the client.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		respondError(c, http.StatusBadRequest, "validation", err.Error())
	case errors.Is(err, apperrors.ErrUnsupportedSite):
		respondError(c, http.StatusBadRequest, "unsupported_site", err.Error())
	case errors.Is(err, apperrors.ErrNoSiteSelected):
		respondError(c, http.StatusBadRequest, "no_site_selected", err.Error())
	case errors.Is(err, apperrors.ErrForbidden):
		respondError(c, http.StatusForbidden, "forbidden", "access denied")
	case errors.Is(err, apperrors.ErrNotFound):
		respondError(c, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, apperrors.ErrDuplicate):
		respondError(c, http.StatusConflict, "duplicate", err.Error())
	case errors.Is(err, apperrors.ErrChangeInFlight):
		respondError(c, http.StatusConflict, "change_in_flight", err.Error())
	case errors.Is(err, apperrors.ErrServerOnly):
		respondError(c, http.StatusServiceUnavailable, "server_only", err.Error())
	case errors.Is(err, apperrors.ErrConnectionFailed):
		logger.Error("site connection failed", slog.String("error", err.Error()))
		respondError(c, http.StatusServiceUnavailable, "connection_failed", "site database is unreachable")
	case errors.Is(err, apperrors.ErrQueryFailed):
		logger.Error("site query failed", slog.String("error", err.Error()))
		respondError(c, http.StatusInternalServerError, "query_failed", fallback)
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		respondError(c, http.StatusInternalServerError, "internal", fallback)
	}
}

// respondLoginError maps login failures. Bad credentials come back as 401
// rather than the 403 the forbidden sentinel would otherwise produce.
func respondLoginError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrForbidden):
		logger.Warn("Login rejected")
		respondError(c, http.StatusUnauthorized, "unauthorized", "Invalid user ID or password")
	case errors.Is(err, apperrors.ErrConnectionFailed):
		logger.Error("Login unavailable", slog.String("error", err.Error()))
		respondError(c, http.StatusServiceUnavailable, "connection_failed", "Login is temporarily unavailable")
	default:
		logger.Error("Login failed", slog.String("error", err.Error()))
		respondError(c, http.StatusInternalServerError, "internal", "Login failed")
	}
}

// respondBindingError reports a request that failed binding or validation.
func respondBindingError(c *gin.Context, logger *slog.Logger, err error) {
	logger.Warn("Failed to bind request", slog.String("error", err.Error()))
	respondError(c, http.StatusBadRequest, "validation", "Invalid request format: "+err.Error())
}
