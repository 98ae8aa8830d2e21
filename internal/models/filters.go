package models

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
)

// SearchFilters is the accumulated filter object of a chat session and the
// query shape of a listing search. A nil field imposes no constraint.
type SearchFilters struct {
	Make         *string `bson:"make,omitempty" json:"make,omitempty"`
	Model        *string `bson:"model,omitempty" json:"model,omitempty"`
	MinPrice     *int    `bson:"min_price,omitempty" json:"minPrice,omitempty"`
	MaxPrice     *int    `bson:"max_price,omitempty" json:"maxPrice,omitempty"`
	MinYear      *int    `bson:"min_year,omitempty" json:"minYear,omitempty"`
	MaxYear      *int    `bson:"max_year,omitempty" json:"maxYear,omitempty"`
	FuelType     *string `bson:"fuel_type,omitempty" json:"fuelType,omitempty"`
	Transmission *string `bson:"transmission,omitempty" json:"transmission,omitempty"`
	MaxMileage   *int    `bson:"max_mileage,omitempty" json:"maxMileage,omitempty"`
	Location     *string `bson:"location,omitempty" json:"location,omitempty"`
	BodyType     *string `bson:"body_type,omitempty" json:"bodyType,omitempty"`
	Color        *string `bson:"color,omitempty" json:"color,omitempty"`
}

// Merge overlays delta onto f. Fields set in delta overwrite, fields left nil
// keep their prior value. A field can never be cleared through Merge.
func (f SearchFilters) Merge(delta SearchFilters) SearchFilters {
	out := f
	if delta.Make != nil {
		out.Make = delta.Make
	}
	if delta.Model != nil {
		out.Model = delta.Model
	}
	if delta.MinPrice != nil {
		out.MinPrice = delta.MinPrice
	}
	if delta.MaxPrice != nil {
		out.MaxPrice = delta.MaxPrice
	}
	if delta.MinYear != nil {
		out.MinYear = delta.MinYear
	}
	if delta.MaxYear != nil {
		out.MaxYear = delta.MaxYear
	}
	if delta.FuelType != nil {
		out.FuelType = delta.FuelType
	}
	if delta.Transmission != nil {
		out.Transmission = delta.Transmission
	}
	if delta.MaxMileage != nil {
		out.MaxMileage = delta.MaxMileage
	}
	if delta.Location != nil {
		out.Location = delta.Location
	}
	if delta.BodyType != nil {
		out.BodyType = delta.BodyType
	}
	if delta.Color != nil {
		out.Color = delta.Color
	}
	return out
}

func (f SearchFilters) IsEmpty() bool {
	return f == SearchFilters{}
}

// CacheKey returns a stable digest of the filter values.
func (f SearchFilters) CacheKey() string {
	data, _ := json.Marshal(f)
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// StringPtr and IntPtr are small helpers for building filters and alerts.
func StringPtr(s string) *string { return &s }

func IntPtr(i int) *int { return &i }
