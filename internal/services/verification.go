package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"carmarket-backend/internal/models"
)

// LogbookData is what was read off a registration document.
type LogbookData struct {
	VIN                string `json:"vin,omitempty" validate:"omitempty,len=17"`
	RegistrationNumber string `json:"registrationNumber,omitempty" validate:"omitempty,max=20"`
	Make               string `json:"make,omitempty" validate:"omitempty,max=50"`
	Model              string `json:"model,omitempty" validate:"omitempty,max=50"`
	YearOfManufacture  int    `json:"yearOfManufacture,omitempty" validate:"omitempty,min=1900,max=2100"`
	Owners             int    `json:"owners,omitempty" validate:"omitempty,gte=0"`
	Color              string `json:"color,omitempty"`
	EngineSize         string `json:"engineSize,omitempty"`
	FuelType           string `json:"fuelType,omitempty"`
	Transmission       string `json:"transmission,omitempty"`
	Confidence         int    `json:"confidence,omitempty" validate:"omitempty,min=0,max=100"`
}

type VerificationResult struct {
	IsVerified      bool     `json:"isVerified"`
	MatchPercentage int      `json:"matchPercentage"`
	Mismatches      []string `json:"mismatches"`
}

const logbookVerifiedThreshold = 75

// VerifyLogbook compares logbook data with a listing. Only fields present on
// both sides are checked.
func VerifyLogbook(logbook *LogbookData, listing *models.Listing) VerificationResult {
	mismatches := []string{}
	matches, checks := 0, 0

	if logbook.Make != "" && listing.Make != "" {
		checks++
		if strings.EqualFold(logbook.Make, listing.Make) {
			matches++
		} else {
			mismatches = append(mismatches, fmt.Sprintf("Make mismatch: %s vs %s", logbook.Make, listing.Make))
		}
	}

	if logbook.Model != "" && listing.Model != "" {
		checks++
		a, b := strings.ToLower(logbook.Model), strings.ToLower(listing.Model)
		if strings.Contains(a, b) || strings.Contains(b, a) {
			matches++
		} else {
			mismatches = append(mismatches, fmt.Sprintf("Model mismatch: %s vs %s", logbook.Model, listing.Model))
		}
	}

	if logbook.YearOfManufacture != 0 && listing.Year != 0 {
		checks++
		if logbook.YearOfManufacture == listing.Year {
			matches++
		} else {
			mismatches = append(mismatches, fmt.Sprintf("Year mismatch: %d vs %d", logbook.YearOfManufacture, listing.Year))
		}
	}

	if logbook.RegistrationNumber != "" && listing.Registration != "" {
		checks++
		if normalizeRegistration(logbook.RegistrationNumber) == normalizeRegistration(listing.Registration) {
			matches++
		} else {
			mismatches = append(mismatches, fmt.Sprintf("Registration mismatch: %s vs %s", logbook.RegistrationNumber, listing.Registration))
		}
	}

	percentage := 0
	if checks > 0 {
		percentage = int(math.Round(float64(matches) / float64(checks) * 100))
	}

	return VerificationResult{
		IsVerified:      percentage >= logbookVerifiedThreshold && len(mismatches) == 0,
		MatchPercentage: percentage,
		Mismatches:      mismatches,
	}
}

// VerifyListingLogbook checks logbook data against the seller's listing and
// records the outcome on it.
func (s *ListingService) VerifyListingLogbook(ctx context.Context, listingID, sellerID string, logbook *LogbookData) (*VerificationResult, *models.Listing, error) {
	listing, err := s.ownedListing(ctx, listingID, sellerID)
	if err != nil {
		return nil, nil, err
	}

	result := VerifyLogbook(logbook, listing)

	listing.LogbookVerified = result.IsVerified
	listing.RecomputeVerificationScore()
	updated, err := s.listings.Update(ctx, listing)
	if err != nil {
		return nil, nil, notFound(err, ErrListingNotFound)
	}
	s.invalidateListing(ctx, listingID)

	s.log.Info().
		Str("listing_id", listingID).
		Bool("verified", result.IsVerified).
		Int("match_percentage", result.MatchPercentage).
		Msg("logbook verification recorded")

	return &result, updated, nil
}
