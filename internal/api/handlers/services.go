package handlers

import (
	"context"

	"carmarket-backend/internal/models"
	"carmarket-backend/internal/services"
	"carmarket-backend/pkg/jwt"
)

// The handlers depend on these narrow views of the services so they can be
// exercised without a database.

type AuthAPI interface {
	Register(ctx context.Context, req *services.RegisterRequest) (*services.LoginResponse, error)
	Login(ctx context.Context, req *services.LoginRequest) (*services.LoginResponse, error)
	GetProfile(ctx context.Context, userID string) (*models.AuthUser, error)
	UpdatePhone(ctx context.Context, userID, phone string) (*models.AuthUser, error)
	ValidateToken(token string) (*jwt.Claims, error)
}

type ListingAPI interface {
	Search(ctx context.Context, filters models.SearchFilters) ([]*models.Listing, error)
	GetListing(ctx context.Context, id string) (*models.Listing, error)
	GetSellerListings(ctx context.Context, sellerID string) ([]*models.Listing, error)
	CreateListing(ctx context.Context, sellerID string, req *services.CreateListingRequest) (*models.Listing, error)
	UpdateListing(ctx context.Context, id, sellerID string, req *services.UpdateListingRequest) (*models.Listing, error)
	ChangeStatus(ctx context.Context, id, sellerID, status string) (*models.Listing, error)
	DeleteListing(ctx context.Context, id, sellerID string) error

	GetImages(ctx context.Context, listingID string) ([]*models.ListingImage, error)
	AddImages(ctx context.Context, listingID, sellerID string, urls []string) ([]*models.ListingImage, error)
	DeleteImage(ctx context.Context, listingID, imageID, sellerID string) error
	SetPrimaryImage(ctx context.Context, listingID, imageID, sellerID string) (*models.ListingImage, error)
	GetDocuments(ctx context.Context, listingID string) ([]*models.ListingDocument, error)
	AddDocument(ctx context.Context, listingID, sellerID string, req *services.AddDocumentRequest) (*models.ListingDocument, error)
	DeleteDocument(ctx context.Context, docID, userID string) error

	VerifyListingLogbook(ctx context.Context, listingID, sellerID string, logbook *services.LogbookData) (*services.VerificationResult, *models.Listing, error)
}

type AlertAPI interface {
	GetUserAlerts(ctx context.Context, userID string) ([]*models.Alert, error)
	CreateAlert(ctx context.Context, userID string, req *services.CreateAlertRequest) (*models.Alert, error)
	DeleteAlert(ctx context.Context, id, userID string) error
	ToggleAlert(ctx context.Context, id, userID string) (*models.Alert, error)
}

type ChatAPI interface {
	CreateSession(ctx context.Context, userID *string) (*services.SessionView, error)
	GetSession(ctx context.Context, id string) (*services.SessionView, error)
	ProcessTurn(ctx context.Context, sessionID string, in services.TurnInput) (*services.TurnResult, error)
}

var (
	_ AuthAPI    = (*services.AuthService)(nil)
	_ ListingAPI = (*services.ListingService)(nil)
	_ AlertAPI   = (*services.AlertService)(nil)
	_ ChatAPI    = (*services.ChatService)(nil)
)
