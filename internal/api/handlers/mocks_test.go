package handlers

import (
	"context"

	"carmarket-backend/internal/models"
	"carmarket-backend/internal/services"
	"carmarket-backend/pkg/jwt"
	"carmarket-backend/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockAuth struct{ mock.Mock }

func (m *MockAuth) Register(ctx context.Context, req *services.RegisterRequest) (*services.LoginResponse, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.(*services.LoginResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuth) Login(ctx context.Context, req *services.LoginRequest) (*services.LoginResponse, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.(*services.LoginResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuth) GetProfile(ctx context.Context, userID string) (*models.AuthUser, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.(*models.AuthUser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuth) UpdatePhone(ctx context.Context, userID, phone string) (*models.AuthUser, error) {
	args := m.Called(ctx, userID, phone)
	if v := args.Get(0); v != nil {
		return v.(*models.AuthUser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuth) ValidateToken(token string) (*jwt.Claims, error) {
	args := m.Called(token)
	if v := args.Get(0); v != nil {
		return v.(*jwt.Claims), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockListings struct{ mock.Mock }

func (m *MockListings) listing(args mock.Arguments) (*models.Listing, error) {
	if v := args.Get(0); v != nil {
		return v.(*models.Listing), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockListings) listings(args mock.Arguments) ([]*models.Listing, error) {
	if v := args.Get(0); v != nil {
		return v.([]*models.Listing), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockListings) Search(ctx context.Context, filters models.SearchFilters) ([]*models.Listing, error) {
	return m.listings(m.Called(ctx, filters))
}

func (m *MockListings) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	return m.listing(m.Called(ctx, id))
}

func (m *MockListings) GetSellerListings(ctx context.Context, sellerID string) ([]*models.Listing, error) {
	return m.listings(m.Called(ctx, sellerID))
}

func (m *MockListings) CreateListing(ctx context.Context, sellerID string, req *services.CreateListingRequest) (*models.Listing, error) {
	return m.listing(m.Called(ctx, sellerID, req))
}

func (m *MockListings) UpdateListing(ctx context.Context, id, sellerID string, req *services.UpdateListingRequest) (*models.Listing, error) {
	return m.listing(m.Called(ctx, id, sellerID, req))
}

func (m *MockListings) ChangeStatus(ctx context.Context, id, sellerID, status string) (*models.Listing, error) {
	return m.listing(m.Called(ctx, id, sellerID, status))
}

func (m *MockListings) DeleteListing(ctx context.Context, id, sellerID string) error {
	return m.Called(ctx, id, sellerID).Error(0)
}

func (m *MockListings) GetImages(ctx context.Context, listingID string) ([]*models.ListingImage, error) {
	args := m.Called(ctx, listingID)
	if v := args.Get(0); v != nil {
		return v.([]*models.ListingImage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockListings) AddImages(ctx context.Context, listingID, sellerID string, urls []string) ([]*models.ListingImage, error) {
	args := m.Called(ctx, listingID, sellerID, urls)
	if v := args.Get(0); v != nil {
		return v.([]*models.ListingImage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockListings) DeleteImage(ctx context.Context, listingID, imageID, sellerID string) error {
	return m.Called(ctx, listingID, imageID, sellerID).Error(0)
}

func (m *MockListings) SetPrimaryImage(ctx context.Context, listingID, imageID, sellerID string) (*models.ListingImage, error) {
	args := m.Called(ctx, listingID, imageID, sellerID)
	if v := args.Get(0); v != nil {
		return v.(*models.ListingImage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockListings) GetDocuments(ctx context.Context, listingID string) ([]*models.ListingDocument, error) {
	args := m.Called(ctx, listingID)
	if v := args.Get(0); v != nil {
		return v.([]*models.ListingDocument), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockListings) AddDocument(ctx context.Context, listingID, sellerID string, req *services.AddDocumentRequest) (*models.ListingDocument, error) {
	args := m.Called(ctx, listingID, sellerID, req)
	if v := args.Get(0); v != nil {
		return v.(*models.ListingDocument), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockListings) DeleteDocument(ctx context.Context, docID, userID string) error {
	return m.Called(ctx, docID, userID).Error(0)
}

func (m *MockListings) VerifyListingLogbook(ctx context.Context, listingID, sellerID string, logbook *services.LogbookData) (*services.VerificationResult, *models.Listing, error) {
	args := m.Called(ctx, listingID, sellerID, logbook)
	var (
		result  *services.VerificationResult
		listing *models.Listing
	)
	if v := args.Get(0); v != nil {
		result = v.(*services.VerificationResult)
	}
	if v := args.Get(1); v != nil {
		listing = v.(*models.Listing)
	}
	return result, listing, args.Error(2)
}

type MockAlerts struct{ mock.Mock }

func (m *MockAlerts) GetUserAlerts(ctx context.Context, userID string) ([]*models.Alert, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]*models.Alert), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAlerts) CreateAlert(ctx context.Context, userID string, req *services.CreateAlertRequest) (*models.Alert, error) {
	args := m.Called(ctx, userID, req)
	if v := args.Get(0); v != nil {
		return v.(*models.Alert), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAlerts) DeleteAlert(ctx context.Context, id, userID string) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *MockAlerts) ToggleAlert(ctx context.Context, id, userID string) (*models.Alert, error) {
	args := m.Called(ctx, id, userID)
	if v := args.Get(0); v != nil {
		return v.(*models.Alert), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockChat struct{ mock.Mock }

func (m *MockChat) CreateSession(ctx context.Context, userID *string) (*services.SessionView, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.(*services.SessionView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChat) GetSession(ctx context.Context, id string) (*services.SessionView, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*services.SessionView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChat) ProcessTurn(ctx context.Context, sessionID string, in services.TurnInput) (*services.TurnResult, error) {
	args := m.Called(ctx, sessionID, in)
	if v := args.Get(0); v != nil {
		return v.(*services.TurnResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockRedisHealth struct{ mock.Mock }

func (m *MockRedisHealth) HealthCheck(ctx context.Context) redis.HealthStatus {
	return m.Called(ctx).Get(0).(redis.HealthStatus)
}

func (m *MockRedisHealth) GetConnectionStats() map[string]interface{} {
	return m.Called().Get(0).(map[string]interface{})
}

// asUser stands in for the auth middleware.
func asUser(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", id)
		c.Next()
	}
}
