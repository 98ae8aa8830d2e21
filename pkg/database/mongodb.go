package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// IndexCreator is implemented by every repository that owns a collection.
type IndexCreator interface {
	CreateIndexes(ctx context.Context) error
}

// Connect establishes a connection to MongoDB. The database named in the URI
// wins over defaultDB.
func Connect(ctx context.Context, mongoURI, defaultDB string, log zerolog.Logger) (*mongo.Database, error) {
	cs, err := connstring.ParseAndValidate(mongoURI)
	if err != nil {
		return nil, fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	dbName := DatabaseName(cs, defaultDB)
	log.Info().Str("database", dbName).Msg("connected to MongoDB")

	return client.Database(dbName), nil
}

// DatabaseName picks the database from the parsed URI or the fallback.
func DatabaseName(cs *connstring.ConnString, fallback string) string {
	if cs != nil && cs.Database != "" {
		return cs.Database
	}
	return fallback
}

// EnsureIndexes creates the indexes of every repository. A failure is logged
// and does not stop the others.
func EnsureIndexes(ctx context.Context, log zerolog.Logger, creators ...IndexCreator) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	failed := 0
	for _, c := range creators {
		if err := c.CreateIndexes(ctx); err != nil {
			failed++
			log.Warn().Err(err).Str("repository", fmt.Sprintf("%T", c)).Msg("failed to create indexes")
		}
	}

	if failed == 0 {
		log.Info().Int("repositories", len(creators)).Msg("database indexes created")
	}
}

// Disconnect closes the MongoDB connection
func Disconnect(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	return nil
}

// Health checks the database connection health
func Health(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return db.Client().Ping(ctx, nil)
}
