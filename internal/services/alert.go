package services

import (
	"context"
	"strings"
	"time"

	"carmarket-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AlertService struct {
	alerts AlertStore
}

func NewAlertService(alerts AlertStore) *AlertService {
	return &AlertService{alerts: alerts}
}

// CreateAlertRequest leaves a constraint open when its field is omitted.
type CreateAlertRequest struct {
	Make              *string `json:"make" validate:"omitempty,max=50"`
	Model             *string `json:"model" validate:"omitempty,max=50"`
	MinPrice          *int    `json:"minPrice" validate:"omitempty,gte=0"`
	MaxPrice          *int    `json:"maxPrice" validate:"omitempty,gte=0"`
	MinYear           *int    `json:"minYear" validate:"omitempty,min=1950,max=2100"`
	MaxYear           *int    `json:"maxYear" validate:"omitempty,min=1950,max=2100"`
	FuelType          *string `json:"fuelType" validate:"omitempty,max=30"`
	Transmission      *string `json:"transmission" validate:"omitempty,max=30"`
	MaxMileage        *int    `json:"maxMileage" validate:"omitempty,gte=0"`
	Location          *string `json:"location" validate:"omitempty,max=100"`
	NotifyViaWhatsApp *bool   `json:"notifyViaWhatsApp"`
}

func (s *AlertService) GetUserAlerts(ctx context.Context, userID string) ([]*models.Alert, error) {
	return s.alerts.FindByUser(ctx, userID)
}

func (s *AlertService) CreateAlert(ctx context.Context, userID string, req *CreateAlertRequest) (*models.Alert, error) {
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrForbidden
	}

	notifyWhatsApp := true
	if req.NotifyViaWhatsApp != nil {
		notifyWhatsApp = *req.NotifyViaWhatsApp
	}

	now := time.Now()
	alert := &models.Alert{
		ID:                primitive.NewObjectID(),
		UserID:            owner,
		Make:              trimmed(req.Make),
		Model:             trimmed(req.Model),
		MinPrice:          req.MinPrice,
		MaxPrice:          req.MaxPrice,
		MinYear:           req.MinYear,
		MaxYear:           req.MaxYear,
		FuelType:          trimmed(req.FuelType),
		Transmission:      trimmed(req.Transmission),
		MaxMileage:        req.MaxMileage,
		Location:          trimmed(req.Location),
		NotifyViaWhatsApp: notifyWhatsApp,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	return s.alerts.Create(ctx, alert)
}

func (s *AlertService) DeleteAlert(ctx context.Context, id, userID string) error {
	if err := s.alerts.Delete(ctx, id, userID); err != nil {
		return notFound(err, ErrAlertNotFound)
	}
	return nil
}

// ToggleAlert flips an alert between active and paused. Alerts owned by
// someone else look the same as missing ones.
func (s *AlertService) ToggleAlert(ctx context.Context, id, userID string) (*models.Alert, error) {
	alert, err := s.alerts.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrAlertNotFound)
	}
	if alert.UserID.Hex() != userID {
		return nil, ErrAlertNotFound
	}

	updated, err := s.alerts.SetActive(ctx, id, userID, !alert.IsActive)
	if err != nil {
		return nil, notFound(err, ErrAlertNotFound)
	}
	return updated, nil
}

// trimmed drops blank constraints so they are stored as open.
func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
