package handlers

import (
	"errors"
	"net/http"

	"carmarket-backend/internal/api/middleware"
	"carmarket-backend/internal/services"
	"carmarket-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrListingNotFound),
		errors.Is(err, services.ErrAlertNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrImageNotFound),
		errors.Is(err, services.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrSessionClosed):
		return http.StatusConflict
	case errors.Is(err, services.ErrTooManyImages):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with its mapped status. Internal errors are not
// echoed back to the client.
func respondError(c *gin.Context, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		utils.ErrorResponse(c, status, message, nil)
		return
	}
	utils.ErrorResponse(c, status, message, err)
}

func requireUser(c *gin.Context) (string, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User not authenticated", nil)
	}
	return id, ok
}

// bindJSON decodes and validates the request body, writing the 400 itself.
func bindJSON(c *gin.Context, v *validator.Validate, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := v.Struct(req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return false
	}
	return true
}
