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

// SearchLimit caps the number of listings a single search returns.
const SearchLimit = 100

type ListingRepository struct {
	collection *mongo.Collection
	images     *mongo.Collection
	documents  *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{
		collection: db.Collection("listings"),
		images:     db.Collection("listing_images"),
		documents:  db.Collection("listing_documents"),
	}
}

func (r *ListingRepository) Create(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if listing.Status == models.ListingStatusActive && listing.ListedAt == nil {
		now := time.Now()
		listing.ListedAt = &now
	}

	result, err := r.collection.InsertOne(ctx, listing)
	if err != nil {
		return nil, err
	}

	listing.ID = result.InsertedID.(primitive.ObjectID)
	return listing, nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*models.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	objectID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var listing models.Listing
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &listing, nil
}

// Search returns active listings satisfying every set filter, newest first.
func (r *ListingRepository) Search(ctx context.Context, filters models.SearchFilters) ([]*models.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(SearchLimit)

	cursor, err := r.collection.Find(ctx, searchQuery(filters), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeListings(ctx, cursor)
}

func (r *ListingRepository) FindBySeller(ctx context.Context, sellerID string) ([]*models.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	objectID, err := parseID(sellerID)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"seller_id": objectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeListings(ctx, cursor)
}

// Update writes the seller-editable fields of a listing and returns the
// stored document. Status and listed_at only change through UpdateStatus and
// ExpireStale, so an edit never undoes a concurrent sale or expiry.
func (r *ListingRepository) Update(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": listing.ID, "seller_id": listing.SellerID},
		bson.M{"$set": editableFields(listing, time.Now())},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated models.Listing
	if err := result.Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &updated, nil
}

func editableFields(l *models.Listing, now time.Time) bson.M {
	features := l.Features
	if features == nil {
		features = []string{}
	}
	return bson.M{
		"vehicle_type":       l.VehicleType,
		"registration":       l.Registration,
		"make":               l.Make,
		"model":              l.Model,
		"derivative":         l.Derivative,
		"year":               l.Year,
		"price":              l.Price,
		"mileage":            l.Mileage,
		"mileage_unit":       l.MileageUnit,
		"location":           l.Location,
		"county":             l.County,
		"fuel_type":          l.FuelType,
		"transmission":       l.Transmission,
		"engine_size":        l.EngineSize,
		"title":              l.Title,
		"description":        l.Description,
		"body_type":          l.BodyType,
		"color":              l.Color,
		"condition":          l.Condition,
		"number_of_doors":    l.NumberOfDoors,
		"number_of_seats":    l.NumberOfSeats,
		"features":           features,
		"image_url":          l.ImageURL,
		"verification_score": l.VerificationScore,
		"logbook_verified":   l.LogbookVerified,
		"mileage_verified":   l.MileageVerified,
		"photos_verified":    l.PhotosVerified,
		"price_good":         l.PriceGood,
		"owners":             l.Owners,
		"service_history":    l.ServiceHistory,
		"updated_at":         now,
	}
}

// UpdateStatus moves a listing from one status to another. The write only
// lands if the stored status still equals from.
func (r *ListingRepository) UpdateStatus(ctx context.Context, id, from, to string) (*models.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	objectID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	set := bson.M{
		"status":     to,
		"updated_at": now,
	}
	// Going live restarts the listing's expiry clock.
	if to == models.ListingStatusActive {
		set["listed_at"] = now
	}
	update := bson.M{"$set": set}

	result := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID, "status": from},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var listing models.Listing
	if err := result.Decode(&listing); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &listing, nil
}

// Delete removes a seller's listing together with its images and documents.
func (r *ListingRepository) Delete(ctx context.Context, id, sellerID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	objectID, err := parseID(id)
	if err != nil {
		return err
	}
	sellerObjectID, err := parseID(sellerID)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID, "seller_id": sellerObjectID})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	if _, err := r.images.DeleteMany(ctx, bson.M{"listing_id": objectID}); err != nil {
		return err
	}
	_, err = r.documents.DeleteMany(ctx, bson.M{"listing_id": objectID})
	return err
}

// ExpireStale moves active listings that went live before the cutoff to
// expired and returns their ids.
func (r *ListingRepository) ExpireStale(ctx context.Context, before time.Time) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	stale := bson.M{
		"status":    models.ListingStatusActive,
		"listed_at": bson.M{"$lt": before},
	}

	cursor, err := r.collection.Find(ctx, stale, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []string{}, nil
	}

	ids := make([]primitive.ObjectID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	// BSON dates hold milliseconds; truncating keeps the follow-up match exact.
	now := time.Now().Truncate(time.Millisecond)
	result, err := r.collection.UpdateMany(ctx, expireFilter(ids), bson.M{"$set": bson.M{
		"status":     models.ListingStatusExpired,
		"updated_at": now,
	}})
	if err != nil {
		return nil, err
	}
	if result.ModifiedCount == 0 {
		return []string{}, nil
	}

	// Only report the listings this sweep actually moved.
	cursor, err = r.collection.Find(ctx, expiredByFilter(ids, now), options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	rows = nil
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	expired := make([]string, len(rows))
	for i, row := range rows {
		expired[i] = row.ID.Hex()
	}
	return expired, nil
}

// expireFilter keeps a listing that was sold or withdrawn after the scan
// untouched.
func expireFilter(ids []primitive.ObjectID) bson.M {
	return bson.M{"_id": bson.M{"$in": ids}, "status": models.ListingStatusActive}
}

func expiredByFilter(ids []primitive.ObjectID, at time.Time) bson.M {
	return bson.M{
		"_id":        bson.M{"$in": ids},
		"status":     models.ListingStatusExpired,
		"updated_at": at,
	}
}

// CreateIndexes creates necessary indexes for the listings collection
func (r *ListingRepository) CreateIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "seller_id", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "make", Value: 1},
				{Key: "model", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "price", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "listed_at", Value: 1},
			},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func searchQuery(f models.SearchFilters) bson.M {
	query := bson.M{"status": models.ListingStatusActive}

	equal := map[string]*string{
		"make":         f.Make,
		"model":        f.Model,
		"fuel_type":    f.FuelType,
		"transmission": f.Transmission,
		"location":     f.Location,
		"body_type":    f.BodyType,
		"color":        f.Color,
	}
	for field, value := range equal {
		if value != nil && *value != "" {
			query[field] = *value
		}
	}

	if r := intRange(f.MinPrice, f.MaxPrice); r != nil {
		query["price"] = r
	}
	if r := intRange(f.MinYear, f.MaxYear); r != nil {
		query["year"] = r
	}
	if r := intRange(nil, f.MaxMileage); r != nil {
		query["mileage"] = r
	}

	return query
}

func intRange(min, max *int) bson.M {
	r := bson.M{}
	if min != nil {
		r["$gte"] = *min
	}
	if max != nil {
		r["$lte"] = *max
	}
	if len(r) == 0 {
		return nil
	}
	return r
}

func decodeListings(ctx context.Context, cursor *mongo.Cursor) ([]*models.Listing, error) {
	listings := []*models.Listing{}
	for cursor.Next(ctx) {
		var listing models.Listing
		if err := cursor.Decode(&listing); err != nil {
			return nil, err
		}
		listings = append(listings, &listing)
	}
	return listings, cursor.Err()
}
