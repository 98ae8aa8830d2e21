package services

import (
	"context"
	"time"

	"carmarket-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const MaxImagesPerRequest = 10

type AddImagesRequest struct {
	ImageURLs []string `json:"imageUrls" validate:"required,min=1,dive,required,url"`
}

type AddDocumentRequest struct {
	DocType  string `json:"docType" validate:"required,oneof=logbook service_record inspection_report"`
	FileName string `json:"fileName" validate:"required,max=255"`
	FileURL  string `json:"fileUrl" validate:"required,url"`
}

func (s *ListingService) GetImages(ctx context.Context, listingID string) ([]*models.ListingImage, error) {
	images, err := s.media.FindImages(ctx, listingID)
	if err != nil {
		return nil, notFound(err, ErrListingNotFound)
	}
	return images, nil
}

// AddImages records image URLs for a listing. When the listing has no images
// yet the first one becomes primary and is used as the listing thumbnail.
func (s *ListingService) AddImages(ctx context.Context, listingID, sellerID string, urls []string) ([]*models.ListingImage, error) {
	if len(urls) > MaxImagesPerRequest {
		return nil, ErrTooManyImages
	}

	listing, err := s.ownedListing(ctx, listingID, sellerID)
	if err != nil {
		return nil, err
	}

	existing, err := s.media.FindImages(ctx, listingID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	images := make([]*models.ListingImage, len(urls))
	for i, url := range urls {
		images[i] = &models.ListingImage{
			ID:         primitive.NewObjectID(),
			ListingID:  listing.ID,
			ImageURL:   url,
			IsPrimary:  len(existing) == 0 && i == 0,
			UploadedAt: now,
		}
	}

	saved, err := s.media.AddImages(ctx, images)
	if err != nil {
		return nil, err
	}

	if len(existing) == 0 && len(saved) > 0 {
		listing.ImageURL = saved[0].ImageURL
		if _, err := s.listings.Update(ctx, listing); err != nil {
			return nil, err
		}
		s.invalidateListing(ctx, listingID)
	}

	return saved, nil
}

func (s *ListingService) DeleteImage(ctx context.Context, listingID, imageID, sellerID string) error {
	if _, err := s.ownedListing(ctx, listingID, sellerID); err != nil {
		return err
	}

	if err := s.media.DeleteImage(ctx, imageID, listingID); err != nil {
		return notFound(err, ErrImageNotFound)
	}
	return nil
}

// SetPrimaryImage makes one image primary and mirrors it onto the listing.
func (s *ListingService) SetPrimaryImage(ctx context.Context, listingID, imageID, sellerID string) (*models.ListingImage, error) {
	listing, err := s.ownedListing(ctx, listingID, sellerID)
	if err != nil {
		return nil, err
	}

	image, err := s.media.SetPrimaryImage(ctx, imageID, listingID)
	if err != nil {
		return nil, notFound(err, ErrImageNotFound)
	}

	listing.ImageURL = image.ImageURL
	if _, err := s.listings.Update(ctx, listing); err != nil {
		return nil, err
	}
	s.invalidateListing(ctx, listingID)

	return image, nil
}

func (s *ListingService) GetDocuments(ctx context.Context, listingID string) ([]*models.ListingDocument, error) {
	docs, err := s.media.FindDocuments(ctx, listingID)
	if err != nil {
		return nil, notFound(err, ErrListingNotFound)
	}
	return docs, nil
}

// AddDocument records a document against a listing. A logbook upload does not
// verify the listing by itself; that happens through VerifyListingLogbook.
func (s *ListingService) AddDocument(ctx context.Context, listingID, sellerID string, req *AddDocumentRequest) (*models.ListingDocument, error) {
	listing, err := s.ownedListing(ctx, listingID, sellerID)
	if err != nil {
		return nil, err
	}

	doc := &models.ListingDocument{
		ListingID:  listing.ID,
		UserID:     listing.SellerID,
		DocType:    req.DocType,
		FileName:   req.FileName,
		FileURL:    req.FileURL,
		UploadedAt: time.Now(),
	}

	return s.media.AddDocument(ctx, doc)
}

func (s *ListingService) DeleteDocument(ctx context.Context, docID, userID string) error {
	if err := s.media.DeleteDocument(ctx, docID, userID); err != nil {
		return notFound(err, ErrDocumentNotFound)
	}
	return nil
}
