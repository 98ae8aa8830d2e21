package services

import (
	"context"
	"strings"
	"time"

	"carmarket-backend/internal/models"
	"carmarket-backend/pkg/cache"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ListingService struct {
	listings    ListingStore
	media       MediaStore
	dispatcher  AlertDispatcher
	cache       cache.CacheManager
	cacheConfig cache.CacheConfig
	log         zerolog.Logger
}

func NewListingService(listings ListingStore, media MediaStore, dispatcher AlertDispatcher, log zerolog.Logger) *ListingService {
	if dispatcher == nil {
		dispatcher = NopDispatcher{}
	}
	return &ListingService{
		listings:    listings,
		media:       media,
		dispatcher:  dispatcher,
		cacheConfig: cache.DefaultCacheConfig(),
		log:         log.With().Str("component", "listing_service").Logger(),
	}
}

// SetCacheManager enables read-through caching of listings and searches
func (s *ListingService) SetCacheManager(cm cache.CacheManager, cfg cache.CacheConfig) {
	s.cache = cm
	s.cacheConfig = cfg
}

type CreateListingRequest struct {
	VehicleType    string   `json:"vehicleType" validate:"omitempty,oneof=Car Van Bike Truck"`
	Registration   string   `json:"registration" validate:"omitempty,max=20"`
	Make           string   `json:"make" validate:"required,min=1,max=50"`
	Model          string   `json:"model" validate:"required,min=1,max=50"`
	Derivative     string   `json:"derivative" validate:"omitempty,max=100"`
	Year           int      `json:"year" validate:"required,min=1950,max=2100"`
	Price          int      `json:"price" validate:"gte=0"`
	Mileage        int      `json:"mileage" validate:"gte=0"`
	MileageUnit    string   `json:"mileageUnit" validate:"omitempty,oneof=km miles"`
	Location       string   `json:"location" validate:"required,min=1,max=100"`
	County         string   `json:"county" validate:"omitempty,max=50"`
	FuelType       string   `json:"fuelType" validate:"required,oneof=Petrol Diesel Hybrid Electric 'Plug-in Hybrid' LPG"`
	Transmission   string   `json:"transmission" validate:"required,oneof=Manual Automatic Semi-Automatic CVT"`
	EngineSize     string   `json:"engineSize" validate:"omitempty,max=20"`
	Title          string   `json:"title" validate:"omitempty,max=150"`
	Description    string   `json:"description" validate:"omitempty,max=5000"`
	BodyType       string   `json:"bodyType" validate:"omitempty,max=50"`
	Color          string   `json:"color" validate:"omitempty,max=30"`
	Condition      string   `json:"condition" validate:"omitempty,max=30"`
	NumberOfDoors  int      `json:"numberOfDoors" validate:"omitempty,min=1,max=8"`
	NumberOfSeats  int      `json:"numberOfSeats" validate:"omitempty,min=1,max=60"`
	Features       []string `json:"features" validate:"omitempty,max=50,dive,max=100"`
	Owners         int      `json:"owners" validate:"gte=0"`
	ServiceHistory string   `json:"serviceHistory" validate:"omitempty,oneof=Full Partial None"`
	Status         string   `json:"status" validate:"omitempty,oneof=draft active"`
}

// UpdateListingRequest carries a partial edit; nil fields are left alone.
type UpdateListingRequest struct {
	Make           *string  `json:"make" validate:"omitempty,min=1,max=50"`
	Model          *string  `json:"model" validate:"omitempty,min=1,max=50"`
	Derivative     *string  `json:"derivative" validate:"omitempty,max=100"`
	Year           *int     `json:"year" validate:"omitempty,min=1950,max=2100"`
	Price          *int     `json:"price" validate:"omitempty,gte=0"`
	Mileage        *int     `json:"mileage" validate:"omitempty,gte=0"`
	Location       *string  `json:"location" validate:"omitempty,min=1,max=100"`
	County         *string  `json:"county" validate:"omitempty,max=50"`
	FuelType       *string  `json:"fuelType" validate:"omitempty,oneof=Petrol Diesel Hybrid Electric 'Plug-in Hybrid' LPG"`
	Transmission   *string  `json:"transmission" validate:"omitempty,oneof=Manual Automatic Semi-Automatic CVT"`
	Title          *string  `json:"title" validate:"omitempty,max=150"`
	Description    *string  `json:"description" validate:"omitempty,max=5000"`
	BodyType       *string  `json:"bodyType" validate:"omitempty,max=50"`
	Color          *string  `json:"color" validate:"omitempty,max=30"`
	Condition      *string  `json:"condition" validate:"omitempty,max=30"`
	Features       []string `json:"features" validate:"omitempty,max=50,dive,max=100"`
	Owners         *int     `json:"owners" validate:"omitempty,gte=0"`
	ServiceHistory *string  `json:"serviceHistory" validate:"omitempty,oneof=Full Partial None"`
}

// Search returns active listings matching the filters, cache first.
func (s *ListingService) Search(ctx context.Context, filters models.SearchFilters) ([]*models.Listing, error) {
	if s.cache != nil {
		cached, err := s.cache.GetSearchResults(ctx, filters)
		if err == nil && cached != nil {
			return cached, nil
		}
		if err != nil {
			s.log.Warn().Err(err).Msg("search cache read failed")
		}
	}

	listings, err := s.listings.Search(ctx, filters)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		ttl := s.cacheConfig.GetTTLForDataType("search")
		if err := s.cache.SetSearchResults(ctx, filters, listings, ttl); err != nil {
			s.log.Warn().Err(err).Msg("failed to cache search results")
		}
	}

	return listings, nil
}

func (s *ListingService) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	if s.cache != nil {
		cached, err := s.cache.GetListing(ctx, id)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrListingNotFound)
	}

	if s.cache != nil {
		ttl := s.cacheConfig.GetTTLForDataType("listing")
		if err := s.cache.SetListing(ctx, listing, ttl); err != nil {
			s.log.Warn().Err(err).Str("listing_id", id).Msg("failed to cache listing")
		}
	}

	return listing, nil
}

func (s *ListingService) GetSellerListings(ctx context.Context, sellerID string) ([]*models.Listing, error) {
	return s.listings.FindBySeller(ctx, sellerID)
}

// CreateListing stores a new listing. Only a listing created active is handed
// to the alert dispatcher; drafts and pending_payment listings are announced
// later, when ChangeStatus moves them into active.
func (s *ListingService) CreateListing(ctx context.Context, sellerID string, req *CreateListingRequest) (*models.Listing, error) {
	seller, err := primitive.ObjectIDFromHex(sellerID)
	if err != nil {
		return nil, ErrForbidden
	}

	now := time.Now()
	listing := &models.Listing{
		ID:             primitive.NewObjectID(),
		SellerID:       seller,
		VehicleType:    defaultString(req.VehicleType, "Car"),
		Registration:   normalizeRegistration(req.Registration),
		Make:           strings.TrimSpace(req.Make),
		Model:          strings.TrimSpace(req.Model),
		Derivative:     req.Derivative,
		Year:           req.Year,
		Price:          req.Price,
		Mileage:        req.Mileage,
		MileageUnit:    defaultString(req.MileageUnit, "km"),
		Location:       strings.TrimSpace(req.Location),
		County:         req.County,
		FuelType:       req.FuelType,
		Transmission:   req.Transmission,
		EngineSize:     req.EngineSize,
		Title:          req.Title,
		Description:    req.Description,
		BodyType:       req.BodyType,
		Color:          req.Color,
		Condition:      req.Condition,
		NumberOfDoors:  req.NumberOfDoors,
		NumberOfSeats:  req.NumberOfSeats,
		Features:       req.Features,
		Owners:         req.Owners,
		ServiceHistory: defaultString(req.ServiceHistory, "None"),
		Status:         defaultString(req.Status, models.ListingStatusDraft),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if listing.Features == nil {
		listing.Features = []string{}
	}

	created, err := s.listings.Create(ctx, listing)
	if err != nil {
		return nil, err
	}

	s.invalidateSearches(ctx)

	if created.Status == models.ListingStatusActive {
		s.dispatcher.Dispatch(ctx, created)
	}

	return created, nil
}

// UpdateListing applies a partial edit. It never changes status, so it does
// not dispatch alerts.
func (s *ListingService) UpdateListing(ctx context.Context, id, sellerID string, req *UpdateListingRequest) (*models.Listing, error) {
	listing, err := s.ownedListing(ctx, id, sellerID)
	if err != nil {
		return nil, err
	}

	applyString(&listing.Make, req.Make)
	applyString(&listing.Model, req.Model)
	applyString(&listing.Derivative, req.Derivative)
	applyInt(&listing.Year, req.Year)
	applyInt(&listing.Price, req.Price)
	applyInt(&listing.Mileage, req.Mileage)
	applyString(&listing.Location, req.Location)
	applyString(&listing.County, req.County)
	applyString(&listing.FuelType, req.FuelType)
	applyString(&listing.Transmission, req.Transmission)
	applyString(&listing.Title, req.Title)
	applyString(&listing.Description, req.Description)
	applyString(&listing.BodyType, req.BodyType)
	applyString(&listing.Color, req.Color)
	applyString(&listing.Condition, req.Condition)
	applyString(&listing.ServiceHistory, req.ServiceHistory)
	applyInt(&listing.Owners, req.Owners)
	if req.Features != nil {
		listing.Features = req.Features
	}

	updated, err := s.listings.Update(ctx, listing)
	if err != nil {
		return nil, notFound(err, ErrListingNotFound)
	}

	s.invalidateListing(ctx, id)
	return updated, nil
}

// ChangeStatus applies a lifecycle transition. Moving into active hands the
// listing to the alert dispatcher.
func (s *ListingService) ChangeStatus(ctx context.Context, id, sellerID, status string) (*models.Listing, error) {
	listing, err := s.ownedListing(ctx, id, sellerID)
	if err != nil {
		return nil, err
	}

	if !models.CanTransition(listing.Status, status) {
		return nil, ErrInvalidTransition
	}

	updated, err := s.listings.UpdateStatus(ctx, id, listing.Status, status)
	if err != nil {
		// Someone else moved the listing first.
		return nil, notFound(err, ErrInvalidTransition)
	}

	s.invalidateListing(ctx, id)

	if updated.Status == models.ListingStatusActive {
		s.dispatcher.Dispatch(ctx, updated)
	}

	return updated, nil
}

func (s *ListingService) DeleteListing(ctx context.Context, id, sellerID string) error {
	if _, err := s.ownedListing(ctx, id, sellerID); err != nil {
		return err
	}

	if err := s.listings.Delete(ctx, id, sellerID); err != nil {
		return notFound(err, ErrListingNotFound)
	}

	s.invalidateListing(ctx, id)
	return nil
}

// ownedListing loads a listing and checks it belongs to sellerID.
func (s *ListingService) ownedListing(ctx context.Context, id, sellerID string) (*models.Listing, error) {
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrListingNotFound)
	}
	if listing.SellerID.Hex() != sellerID {
		return nil, ErrForbidden
	}
	return listing, nil
}

func (s *ListingService) invalidateListing(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateListing(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("listing_id", id).Msg("failed to invalidate listing cache")
	}
	s.invalidateSearches(ctx)
}

func (s *ListingService) invalidateSearches(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSearchResults(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate search cache")
	}
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func applyString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func applyInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func normalizeRegistration(reg string) string {
	return strings.ToUpper(strings.Join(strings.Fields(reg), ""))
}
