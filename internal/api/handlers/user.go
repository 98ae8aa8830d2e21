package handlers

import (
	"net/http"

	"carmarket-backend/internal/services"
	"carmarket-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// UserHandler serves the /me routes.
type UserHandler struct {
	authService    AuthAPI
	listingService ListingAPI
	validator      *validator.Validate
}

func NewUserHandler(authService AuthAPI, listingService ListingAPI) *UserHandler {
	return &UserHandler{
		authService:    authService,
		listingService: listingService,
		validator:      validator.New(),
	}
}

// UpdatePhone sets the number alerts are delivered to
func (h *UserHandler) UpdatePhone(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.UpdatePhoneRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	user, err := h.authService.UpdatePhone(c.Request.Context(), userID, req.PhoneNumber)
	if err != nil {
		respondError(c, "Failed to update phone number", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Phone number updated successfully", user)
}

// GetMyListings returns every listing the user is selling, in any status
func (h *UserHandler) GetMyListings(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	listings, err := h.listingService.GetSellerListings(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "Failed to retrieve listings", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Listings retrieved successfully", listings)
}
