package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Listing struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SellerID          primitive.ObjectID `bson:"seller_id" json:"sellerId"`
	VehicleType       string             `bson:"vehicle_type" json:"vehicleType"`
	Registration      string             `bson:"registration,omitempty" json:"registration,omitempty"`
	Make              string             `bson:"make" json:"make"`
	Model             string             `bson:"model" json:"model"`
	Derivative        string             `bson:"derivative,omitempty" json:"derivative,omitempty"`
	Year              int                `bson:"year" json:"year"`
	Price             int                `bson:"price" json:"price"`
	Mileage           int                `bson:"mileage" json:"mileage"`
	MileageUnit       string             `bson:"mileage_unit" json:"mileageUnit"`
	Location          string             `bson:"location" json:"location"`
	County            string             `bson:"county,omitempty" json:"county,omitempty"`
	FuelType          string             `bson:"fuel_type" json:"fuelType"`
	Transmission      string             `bson:"transmission" json:"transmission"`
	EngineSize        string             `bson:"engine_size,omitempty" json:"engineSize,omitempty"`
	Title             string             `bson:"title,omitempty" json:"title,omitempty"`
	Description       string             `bson:"description,omitempty" json:"description,omitempty"`
	BodyType          string             `bson:"body_type,omitempty" json:"bodyType,omitempty"`
	Color             string             `bson:"color,omitempty" json:"color,omitempty"`
	Condition         string             `bson:"condition,omitempty" json:"condition,omitempty"`
	NumberOfDoors     int                `bson:"number_of_doors,omitempty" json:"numberOfDoors,omitempty"`
	NumberOfSeats     int                `bson:"number_of_seats,omitempty" json:"numberOfSeats,omitempty"`
	Features          []string           `bson:"features" json:"features"`
	ImageURL          string             `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	VerificationScore int                `bson:"verification_score" json:"verificationScore"`
	LogbookVerified   bool               `bson:"logbook_verified" json:"logbookVerified"`
	MileageVerified   bool               `bson:"mileage_verified" json:"mileageVerified"`
	PhotosVerified    bool               `bson:"photos_verified" json:"photosVerified"`
	PriceGood         bool               `bson:"price_good" json:"priceGood"`
	Owners            int                `bson:"owners" json:"owners"`
	ServiceHistory    string             `bson:"service_history" json:"serviceHistory"`
	Status            string             `bson:"status" json:"status"`
	ListedAt          *time.Time         `bson:"listed_at,omitempty" json:"listedAt,omitempty"`
	CreatedAt         time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updatedAt"`
}

// ListingSummary is the public projection of a listing. It carries no seller
// reference, registration or free text.
type ListingSummary struct {
	ID                string `json:"id"`
	Make              string `json:"make"`
	Model             string `json:"model"`
	Year              int    `json:"year"`
	Price             int    `json:"price"`
	Mileage           int    `json:"mileage"`
	MileageUnit       string `json:"mileageUnit"`
	Location          string `json:"location"`
	FuelType          string `json:"fuelType"`
	Transmission      string `json:"transmission"`
	ImageURL          string `json:"imageUrl,omitempty"`
	VerificationScore int    `json:"verificationScore"`
	LogbookVerified   bool   `json:"logbookVerified"`
	MileageVerified   bool   `json:"mileageVerified"`
	PhotosVerified    bool   `json:"photosVerified"`
	PriceGood         bool   `json:"priceGood"`
	BodyType          string `json:"bodyType,omitempty"`
	Color             string `json:"color,omitempty"`
	Condition         string `json:"condition,omitempty"`
}

func (l *Listing) Summary() ListingSummary {
	return ListingSummary{
		ID:                l.ID.Hex(),
		Make:              l.Make,
		Model:             l.Model,
		Year:              l.Year,
		Price:             l.Price,
		Mileage:           l.Mileage,
		MileageUnit:       l.MileageUnit,
		Location:          l.Location,
		FuelType:          l.FuelType,
		Transmission:      l.Transmission,
		ImageURL:          l.ImageURL,
		VerificationScore: l.VerificationScore,
		LogbookVerified:   l.LogbookVerified,
		MileageVerified:   l.MileageVerified,
		PhotosVerified:    l.PhotosVerified,
		PriceGood:         l.PriceGood,
		BodyType:          l.BodyType,
		Color:             l.Color,
		Condition:         l.Condition,
	}
}

// RecomputeVerificationScore awards 25 points per verification flag.
func (l *Listing) RecomputeVerificationScore() {
	score := 0
	for _, ok := range []bool{l.LogbookVerified, l.MileageVerified, l.PhotosVerified, l.PriceGood} {
		if ok {
			score += 25
		}
	}
	l.VerificationScore = score
}

type ListingImage struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ListingID  primitive.ObjectID `bson:"listing_id" json:"listingId"`
	ImageURL   string             `bson:"image_url" json:"imageUrl"`
	IsPrimary  bool               `bson:"is_primary" json:"isPrimary"`
	UploadedAt time.Time          `bson:"uploaded_at" json:"uploadedAt"`
}

type ListingDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ListingID  primitive.ObjectID `bson:"listing_id" json:"listingId"`
	UserID     primitive.ObjectID `bson:"user_id" json:"userId"`
	DocType    string             `bson:"doc_type" json:"docType"`
	FileName   string             `bson:"file_name" json:"fileName"`
	FileURL    string             `bson:"file_url" json:"fileUrl"`
	UploadedAt time.Time          `bson:"uploaded_at" json:"uploadedAt"`
}

// Listing status
const (
	ListingStatusDraft          = "draft"
	ListingStatusPendingPayment = "pending_payment"
	ListingStatusActive         = "active"
	ListingStatusSold           = "sold"
	ListingStatusExpired        = "expired"
)

// listingTransitions lists the statuses reachable from each status.
var listingTransitions = map[string][]string{
	ListingStatusDraft:          {ListingStatusPendingPayment, ListingStatusActive},
	ListingStatusPendingPayment: {ListingStatusActive, ListingStatusDraft},
	ListingStatusActive:         {ListingStatusSold, ListingStatusExpired},
	ListingStatusExpired:        {ListingStatusActive},
	ListingStatusSold:           {},
}

// CanTransition reports whether a listing may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range listingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Fuel types
const (
	FuelPetrol       = "Petrol"
	FuelDiesel       = "Diesel"
	FuelHybrid       = "Hybrid"
	FuelElectric     = "Electric"
	FuelPluginHybrid = "Plug-in Hybrid"
	FuelLPG          = "LPG"
)

// Transmissions
const (
	TransmissionManual        = "Manual"
	TransmissionAutomatic     = "Automatic"
	TransmissionSemiAutomatic = "Semi-Automatic"
	TransmissionCVT           = "CVT"
)

// Document types
const (
	DocTypeLogbook          = "logbook"
	DocTypeServiceRecord    = "service_record"
	DocTypeInspectionReport = "inspection_report"
)
