package handlers

import (
	"net/http"

	"carmarket-backend/internal/services"
	"carmarket-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type AlertHandler struct {
	alertService AlertAPI
	validator    *validator.Validate
}

func NewAlertHandler(alertService AlertAPI) *AlertHandler {
	return &AlertHandler{
		alertService: alertService,
		validator:    validator.New(),
	}
}

// GetAlerts retrieves the caller's saved searches
func (h *AlertHandler) GetAlerts(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	alerts, err := h.alertService.GetUserAlerts(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "Failed to retrieve alerts", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Alerts retrieved successfully", alerts)
}

// CreateAlert creates a new alert
func (h *AlertHandler) CreateAlert(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.CreateAlertRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	alert, err := h.alertService.CreateAlert(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, "Failed to create alert", err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Alert created successfully", alert)
}

// DeleteAlert removes an alert owned by the caller
func (h *AlertHandler) DeleteAlert(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.alertService.DeleteAlert(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, "Failed to delete alert", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Alert deleted successfully", nil)
}

// ToggleAlert pauses or resumes an alert
func (h *AlertHandler) ToggleAlert(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	alert, err := h.alertService.ToggleAlert(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, "Failed to toggle alert", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Alert updated successfully", alert)
}
