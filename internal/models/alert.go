package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Alert is a standing saved search. A nil constraint imposes no restriction.
type Alert struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID            primitive.ObjectID `bson:"user_id" json:"userId"`
	Make              *string            `bson:"make,omitempty" json:"make,omitempty"`
	Model             *string            `bson:"model,omitempty" json:"model,omitempty"`
	MinPrice          *int               `bson:"min_price,omitempty" json:"minPrice,omitempty"`
	MaxPrice          *int               `bson:"max_price,omitempty" json:"maxPrice,omitempty"`
	MinYear           *int               `bson:"min_year,omitempty" json:"minYear,omitempty"`
	MaxYear           *int               `bson:"max_year,omitempty" json:"maxYear,omitempty"`
	FuelType          *string            `bson:"fuel_type,omitempty" json:"fuelType,omitempty"`
	Transmission      *string            `bson:"transmission,omitempty" json:"transmission,omitempty"`
	MaxMileage        *int               `bson:"max_mileage,omitempty" json:"maxMileage,omitempty"`
	Location          *string            `bson:"location,omitempty" json:"location,omitempty"`
	NotifyViaWhatsApp bool               `bson:"notify_via_whatsapp" json:"notifyViaWhatsApp"`
	IsActive          bool               `bson:"is_active" json:"isActive"`
	CreatedAt         time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updatedAt"`
}
