package repository

import (
	"context"
	"errors"
	"time"

	"carmarket-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AlertRepository struct {
	collection *mongo.Collection
}

func NewAlertRepository(db *mongo.Database) *AlertRepository {
	return &AlertRepository{
		collection: db.Collection("alerts"),
	}
}

func (r *AlertRepository) Create(ctx context.Context, alert *models.Alert) (*models.Alert, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, alert)
	if err != nil {
		return nil, err
	}

	alert.ID = result.InsertedID.(primitive.ObjectID)
	return alert, nil
}

func (r *AlertRepository) FindByUser(ctx context.Context, userID string) ([]*models.Alert, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	objectID, err := parseID(userID)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": objectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeAlerts(ctx, cursor)
}

// FindActive returns every alert that is not paused. This is a full scan;
// matching happens in process.
func (r *AlertRepository) FindActive(ctx context.Context) ([]*models.Alert, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeAlerts(ctx, cursor)
}

// SetActive flips the active flag of an alert owned by userID.
func (r *AlertRepository) SetActive(ctx context.Context, id, userID string, active bool) (*models.Alert, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	objectID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	userObjectID, err := parseID(userID)
	if err != nil {
		return nil, err
	}

	update := bson.M{
		"$set": bson.M{
			"is_active":  active,
			"updated_at": time.Now(),
		},
	}

	result := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID, "user_id": userObjectID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var alert models.Alert
	if err := result.Decode(&alert); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &alert, nil
}

func (r *AlertRepository) FindByID(ctx context.Context, id string) (*models.Alert, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	objectID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var alert models.Alert
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&alert)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &alert, nil
}

// Delete removes an alert only when it belongs to userID.
func (r *AlertRepository) Delete(ctx context.Context, id, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	objectID, err := parseID(id)
	if err != nil {
		return err
	}
	userObjectID, err := parseID(userID)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID, "user_id": userObjectID})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}

// CreateIndexes creates necessary indexes for the alerts collection
func (r *AlertRepository) CreateIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "is_active", Value: 1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func decodeAlerts(ctx context.Context, cursor *mongo.Cursor) ([]*models.Alert, error) {
	alerts := []*models.Alert{}
	for cursor.Next(ctx) {
		var alert models.Alert
		if err := cursor.Decode(&alert); err != nil {
			return nil, err
		}
		alerts = append(alerts, &alert)
	}
	return alerts, cursor.Err()
}
