package services

import (
	"context"
	"time"

	"carmarket-backend/internal/models"
)

// The store interfaces below are satisfied by the MongoDB repositories.

type ListingStore interface {
	Create(ctx context.Context, listing *models.Listing) (*models.Listing, error)
	FindByID(ctx context.Context, id string) (*models.Listing, error)
	Search(ctx context.Context, filters models.SearchFilters) ([]*models.Listing, error)
	FindBySeller(ctx context.Context, sellerID string) ([]*models.Listing, error)
	Update(ctx context.Context, listing *models.Listing) (*models.Listing, error)
	UpdateStatus(ctx context.Context, id, from, to string) (*models.Listing, error)
	Delete(ctx context.Context, id, sellerID string) error
	ExpireStale(ctx context.Context, before time.Time) ([]string, error)
}

type AlertStore interface {
	Create(ctx context.Context, alert *models.Alert) (*models.Alert, error)
	FindByUser(ctx context.Context, userID string) ([]*models.Alert, error)
	FindActive(ctx context.Context) ([]*models.Alert, error)
	SetActive(ctx context.Context, id, userID string, active bool) (*models.Alert, error)
	FindByID(ctx context.Context, id string) (*models.Alert, error)
	Delete(ctx context.Context, id, userID string) error
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePhone(ctx context.Context, id, phone string) (*models.User, error)
}

type ChatStore interface {
	CreateSession(ctx context.Context, session *models.ChatSession) (*models.ChatSession, error)
	FindSession(ctx context.Context, id string) (*models.ChatSession, error)
	UpdateFilters(ctx context.Context, id string, filters models.SearchFilters) error
	AddMessage(ctx context.Context, message *models.ChatMessage) (*models.ChatMessage, error)
	FindMessages(ctx context.Context, sessionID string) ([]*models.ChatMessage, error)
}

type MediaStore interface {
	AddImages(ctx context.Context, images []*models.ListingImage) ([]*models.ListingImage, error)
	FindImages(ctx context.Context, listingID string) ([]*models.ListingImage, error)
	DeleteImage(ctx context.Context, id, listingID string) error
	SetPrimaryImage(ctx context.Context, id, listingID string) (*models.ListingImage, error)
	AddDocument(ctx context.Context, doc *models.ListingDocument) (*models.ListingDocument, error)
	FindDocuments(ctx context.Context, listingID string) ([]*models.ListingDocument, error)
	DeleteDocument(ctx context.Context, id, userID string) error
}

// ActiveAlertLister and UserFinder are the narrow views the alert matcher needs.
type ActiveAlertLister interface {
	FindActive(ctx context.Context) ([]*models.Alert, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// ListingSearcher runs a filtered listing query.
type ListingSearcher interface {
	Search(ctx context.Context, filters models.SearchFilters) ([]*models.Listing, error)
}
