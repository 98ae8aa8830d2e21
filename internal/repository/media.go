package repository

import (
	"context"
	"time"

	"carmarket-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MediaRepository stores image and document records for listings. The files
// themselves live elsewhere; only their URLs are kept here.
type MediaRepository struct {
	images    *mongo.Collection
	documents *mongo.Collection
}

func NewMediaRepository(db *mongo.Database) *MediaRepository {
	return &MediaRepository{
		images:    db.Collection("listing_images"),
		documents: db.Collection("listing_documents"),
	}
}

func (r *MediaRepository) AddImages(ctx context.Context, images []*models.ListingImage) ([]*models.ListingImage, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if len(images) == 0 {
		return images, nil
	}

	docs := make([]interface{}, len(images))
	for i, img := range images {
		if img.ID.IsZero() {
			img.ID = primitive.NewObjectID()
		}
		if img.UploadedAt.IsZero() {
			img.UploadedAt = time.Now()
		}
		docs[i] = img
	}

	if _, err := r.images.InsertMany(ctx, docs); err != nil {
		return nil, err
	}

	return images, nil
}

func (r *MediaRepository) FindImages(ctx context.Context, listingID string) ([]*models.ListingImage, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	objectID, err := parseID(listingID)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "is_primary", Value: -1},
		{Key: "uploaded_at", Value: 1},
	})
	cursor, err := r.images.Find(ctx, bson.M{"listing_id": objectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	images := []*models.ListingImage{}
	if err := cursor.All(ctx, &images); err != nil {
		return nil, err
	}
	return images, nil
}

func (r *MediaRepository) DeleteImage(ctx context.Context, id, listingID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	objectID, err := parseID(id)
	if err != nil {
		return err
	}
	listingObjectID, err := parseID(listingID)
	if err != nil {
		return err
	}

	result, err := r.images.DeleteOne(ctx, bson.M{"_id": objectID, "listing_id": listingObjectID})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}

// SetPrimaryImage clears the primary flag on every image of the listing and
// then sets it on the chosen one.
func (r *MediaRepository) SetPrimaryImage(ctx context.Context, id, listingID string) (*models.ListingImage, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	objectID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	listingObjectID, err := parseID(listingID)
	if err != nil {
		return nil, err
	}

	count, err := r.images.CountDocuments(ctx, bson.M{"_id": objectID, "listing_id": listingObjectID})
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNotFound
	}

	if _, err := r.images.UpdateMany(ctx,
		bson.M{"listing_id": listingObjectID},
		bson.M{"$set": bson.M{"is_primary": false}},
	); err != nil {
		return nil, err
	}

	var image models.ListingImage
	err = r.images.FindOneAndUpdate(ctx,
		bson.M{"_id": objectID, "listing_id": listingObjectID},
		bson.M{"$set": bson.M{"is_primary": true}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&image)
	if err != nil {
		return nil, err
	}

	return &image, nil
}

func (r *MediaRepository) AddDocument(ctx context.Context, doc *models.ListingDocument) (*models.ListingDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.documents.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}

	doc.ID = result.InsertedID.(primitive.ObjectID)
	return doc, nil
}

func (r *MediaRepository) FindDocuments(ctx context.Context, listingID string) ([]*models.ListingDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	objectID, err := parseID(listingID)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: 1}})
	cursor, err := r.documents.Find(ctx, bson.M{"listing_id": objectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := []*models.ListingDocument{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// DeleteDocument removes a document uploaded by userID.
func (r *MediaRepository) DeleteDocument(ctx context.Context, id, userID string) error {
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

	result, err := r.documents.DeleteOne(ctx, bson.M{"_id": objectID, "user_id": userObjectID})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}

// CreateIndexes creates necessary indexes for the media collections
func (r *MediaRepository) CreateIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := r.images.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "listing_id", Value: 1}},
	}); err != nil {
		return err
	}

	_, err := r.documents.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "listing_id", Value: 1}},
	})
	return err
}
