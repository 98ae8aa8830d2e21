package services

import (
	"context"
	"testing"

	"carmarket-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestVerifyLogbook(t *testing.T) {
	listing := &models.Listing{Make: "BMW", Model: "3 Series", Year: 2019, Registration: "191D12345"}

	tests := []struct {
		name       string
		logbook    LogbookData
		verified   bool
		percentage int
		mismatches int
	}{
		{
			name:       "all fields agree",
			logbook:    LogbookData{Make: "bmw", Model: "320d 3 Series", YearOfManufacture: 2019, RegistrationNumber: "191 d 12345"},
			verified:   true,
			percentage: 100,
		},
		{
			name:       "one mismatch out of four",
			logbook:    LogbookData{Make: "BMW", Model: "3 Series", YearOfManufacture: 2018, RegistrationNumber: "191D12345"},
			percentage: 75,
			mismatches: 1,
		},
		{
			name:       "model containment the other way",
			logbook:    LogbookData{Model: "3"},
			verified:   true,
			percentage: 100,
		},
		{
			name:       "nothing to compare",
			logbook:    LogbookData{VIN: "WBADT43452G123456"},
			percentage: 0,
		},
		{
			name:       "two of three",
			logbook:    LogbookData{Make: "BMW", Model: "Golf", YearOfManufacture: 2019},
			percentage: 67,
			mismatches: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := VerifyLogbook(&tt.logbook, listing)
			assert.Equal(t, tt.verified, result.IsVerified)
			assert.Equal(t, tt.percentage, result.MatchPercentage)
			assert.Len(t, result.Mismatches, tt.mismatches)
		})
	}
}

func TestVerifyListingLogbookRecordsScore(t *testing.T) {
	svc, listings, _, _ := newListingFixture()
	seller := primitive.NewObjectID().Hex()
	ctx := context.Background()

	listing, err := svc.CreateListing(ctx, seller, createReq(""))
	require.NoError(t, err)
	id := listing.ID.Hex()

	result, updated, err := svc.VerifyListingLogbook(ctx, id, seller, &LogbookData{
		Make:               "Toyota",
		Model:              "Corolla",
		YearOfManufacture:  2020,
		RegistrationNumber: "201-C-1234",
	})
	require.NoError(t, err)
	assert.False(t, result.IsVerified)
	assert.Equal(t, 75, result.MatchPercentage)
	assert.Equal(t, 0, updated.VerificationScore)

	result, updated, err = svc.VerifyListingLogbook(ctx, id, seller, &LogbookData{
		Make:               "Toyota",
		Model:              "Corolla",
		YearOfManufacture:  2020,
		RegistrationNumber: "201 C 1234",
	})
	require.NoError(t, err)
	assert.True(t, result.IsVerified)
	assert.True(t, updated.LogbookVerified)
	assert.Equal(t, 25, updated.VerificationScore)
	assert.Equal(t, 25, listings.listings[id].VerificationScore)

	_, _, err = svc.VerifyListingLogbook(ctx, id, primitive.NewObjectID().Hex(), &LogbookData{})
	assert.ErrorIs(t, err, ErrForbidden)
}
