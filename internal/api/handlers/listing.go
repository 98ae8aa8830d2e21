package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"carmarket-backend/internal/models"
	"carmarket-backend/internal/services"
	"carmarket-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ListingHandler struct {
	listingService ListingAPI
	validator      *validator.Validate
}

func NewListingHandler(listingService ListingAPI) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		validator:      validator.New(),
	}
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft pending_payment active sold expired"`
}

type VerifyLogbookResponse struct {
	Verification *services.VerificationResult `json:"verification"`
	Listing      *models.Listing              `json:"listing"`
}

// SearchListings returns active listings matching the query filters
func (h *ListingHandler) SearchListings(c *gin.Context) {
	filters, err := parseSearchFilters(c)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid search filters", err)
		return
	}

	listings, err := h.listingService.Search(c.Request.Context(), filters)
	if err != nil {
		respondError(c, "Failed to search listings", err)
		return
	}

	summaries := make([]models.ListingSummary, 0, len(listings))
	for _, l := range listings {
		summaries = append(summaries, l.Summary())
	}

	utils.SuccessResponse(c, http.StatusOK, "Listings retrieved successfully", summaries)
}

// GetListing retrieves a specific listing by ID
func (h *ListingHandler) GetListing(c *gin.Context) {
	listing, err := h.listingService.GetListing(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Listing not found", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Listing retrieved successfully", listing)
}

// CreateListing creates a listing owned by the caller
func (h *ListingHandler) CreateListing(c *gin.Context) {
	sellerID, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.CreateListingRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	listing, err := h.listingService.CreateListing(c.Request.Context(), sellerID, &req)
	if err != nil {
		respondError(c, "Failed to create listing", err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Listing created successfully", listing)
}

// UpdateListing applies a partial edit
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	sellerID, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.UpdateListingRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	listing, err := h.listingService.UpdateListing(c.Request.Context(), c.Param("id"), sellerID, &req)
	if err != nil {
		respondError(c, "Failed to update listing", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Listing updated successfully", listing)
}

// ChangeStatus moves a listing through its lifecycle
func (h *ListingHandler) ChangeStatus(c *gin.Context) {
	sellerID, ok := requireUser(c)
	if !ok {
		return
	}

	var req ChangeStatusRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	listing, err := h.listingService.ChangeStatus(c.Request.Context(), c.Param("id"), sellerID, req.Status)
	if err != nil {
		respondError(c, "Failed to change listing status", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Listing status updated successfully", listing)
}

// DeleteListing removes a listing and its media
func (h *ListingHandler) DeleteListing(c *gin.Context) {
	sellerID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.listingService.DeleteListing(c.Request.Context(), c.Param("id"), sellerID); err != nil {
		respondError(c, "Failed to delete listing", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Listing deleted successfully", nil)
}

func (h *ListingHandler) GetImages(c *gin.Context) {
	images, err := h.listingService.GetImages(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to retrieve images", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Images retrieved successfully", images)
}

func (h *ListingHandler) AddImages(c *gin.Context) {
	sellerID, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.AddImagesRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	images, err := h.listingService.AddImages(c.Request.Context(), c.Param("id"), sellerID, req.ImageURLs)
	if err != nil {
		respondError(c, "Failed to add images", err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Images added successfully", images)
}

func (h *ListingHandler) DeleteImage(c *gin.Context) {
	sellerID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.listingService.DeleteImage(c.Request.Context(), c.Param("id"), c.Param("imageId"), sellerID); err != nil {
		respondError(c, "Failed to delete image", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Image deleted successfully", nil)
}

func (h *ListingHandler) SetPrimaryImage(c *gin.Context) {
	sellerID, ok := requireUser(c)
	if !ok {
		return
	}

	image, err := h.listingService.SetPrimaryImage(c.Request.Context(), c.Param("id"), c.Param("imageId"), sellerID)
	if err != nil {
		respondError(c, "Failed to set primary image", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Primary image updated successfully", image)
}

func (h *ListingHandler) GetDocuments(c *gin.Context) {
	docs, err := h.listingService.GetDocuments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to retrieve documents", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Documents retrieved successfully", docs)
}

func (h *ListingHandler) AddDocument(c *gin.Context) {
	sellerID, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.AddDocumentRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	doc, err := h.listingService.AddDocument(c.Request.Context(), c.Param("id"), sellerID, &req)
	if err != nil {
		respondError(c, "Failed to add document", err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Document added successfully", doc)
}

func (h *ListingHandler) DeleteDocument(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.listingService.DeleteDocument(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, "Failed to delete document", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Document deleted successfully", nil)
}

// VerifyLogbook compares logbook data read off a registration document with
// the listing and records the outcome.
func (h *ListingHandler) VerifyLogbook(c *gin.Context) {
	sellerID, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.LogbookData
	if !bindJSON(c, h.validator, &req) {
		return
	}

	result, listing, err := h.listingService.VerifyListingLogbook(c.Request.Context(), c.Param("id"), sellerID, &req)
	if err != nil {
		respondError(c, "Failed to verify logbook", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Logbook checked", VerifyLogbookResponse{
		Verification: result,
		Listing:      listing,
	})
}

// parseSearchFilters reads the filter object from the query string. Blank
// parameters are treated as absent.
func parseSearchFilters(c *gin.Context) (models.SearchFilters, error) {
	var f models.SearchFilters

	strs := []struct {
		name string
		dst  **string
	}{
		{"make", &f.Make},
		{"model", &f.Model},
		{"fuelType", &f.FuelType},
		{"transmission", &f.Transmission},
		{"location", &f.Location},
		{"bodyType", &f.BodyType},
		{"color", &f.Color},
	}
	for _, s := range strs {
		if v := strings.TrimSpace(c.Query(s.name)); v != "" {
			*s.dst = &v
		}
	}

	ints := []struct {
		name string
		dst  **int
	}{
		{"minPrice", &f.MinPrice},
		{"maxPrice", &f.MaxPrice},
		{"minYear", &f.MinYear},
		{"maxYear", &f.MaxYear},
		{"maxMileage", &f.MaxMileage},
	}
	for _, i := range ints {
		raw := strings.TrimSpace(c.Query(i.name))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, fmt.Errorf("%s must be a non-negative integer", i.name)
		}
		*i.dst = &n
	}

	return f, nil
}
