// Package matching decides whether a listing satisfies a saved alert.
package matching

import "carmarket-backend/internal/models"

// Matches reports whether every constraint set on the alert is satisfied by
// the listing. Strings compare exactly and case-sensitively, numeric bounds
// are inclusive. A nil constraint, or an empty string constraint, is open.
func Matches(l *models.Listing, a *models.Alert) bool {
	if !stringOK(a.Make, l.Make) || !stringOK(a.Model, l.Model) {
		return false
	}
	if a.MinPrice != nil && l.Price < *a.MinPrice {
		return false
	}
	if a.MaxPrice != nil && l.Price > *a.MaxPrice {
		return false
	}
	if a.MinYear != nil && l.Year < *a.MinYear {
		return false
	}
	if a.MaxYear != nil && l.Year > *a.MaxYear {
		return false
	}
	if !stringOK(a.FuelType, l.FuelType) || !stringOK(a.Transmission, l.Transmission) {
		return false
	}
	if a.MaxMileage != nil && l.Mileage > *a.MaxMileage {
		return false
	}
	return stringOK(a.Location, l.Location)
}

func stringOK(want *string, got string) bool {
	if want == nil || *want == "" {
		return true
	}
	return *want == got
}
