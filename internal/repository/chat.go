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

type ChatRepository struct {
	sessions *mongo.Collection
	messages *mongo.Collection
}

func NewChatRepository(db *mongo.Database) *ChatRepository {
	return &ChatRepository{
		sessions: db.Collection("chat_sessions"),
		messages: db.Collection("chat_messages"),
	}
}

func (r *ChatRepository) CreateSession(ctx context.Context, session *models.ChatSession) (*models.ChatSession, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.sessions.InsertOne(ctx, session)
	if err != nil {
		return nil, err
	}

	session.ID = result.InsertedID.(primitive.ObjectID)
	return session, nil
}

func (r *ChatRepository) FindSession(ctx context.Context, id string) (*models.ChatSession, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	objectID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var session models.ChatSession
	err = r.sessions.FindOne(ctx, bson.M{"_id": objectID}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &session, nil
}

// UpdateFilters replaces the stored filter object with an already merged one.
func (r *ChatRepository) UpdateFilters(ctx context.Context, id string, filters models.SearchFilters) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	objectID, err := parseID(id)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set": bson.M{
			"active_filters": filters,
			"updated_at":     time.Now(),
		},
	}

	result, err := r.sessions.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *ChatRepository) AddMessage(ctx context.Context, message *models.ChatMessage) (*models.ChatMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.messages.InsertOne(ctx, message)
	if err != nil {
		return nil, err
	}

	message.ID = result.InsertedID.(primitive.ObjectID)
	return message, nil
}

// FindMessages returns a session's messages oldest first.
func (r *ChatRepository) FindMessages(ctx context.Context, sessionID string) ([]*models.ChatMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	objectID, err := parseID(sessionID)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	cursor, err := r.messages.Find(ctx, bson.M{"session_id": objectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	messages := []*models.ChatMessage{}
	for cursor.Next(ctx) {
		var message models.ChatMessage
		if err := cursor.Decode(&message); err != nil {
			return nil, err
		}
		messages = append(messages, &message)
	}

	return messages, cursor.Err()
}

// CreateIndexes creates necessary indexes for the chat collections
func (r *ChatRepository) CreateIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "session_id", Value: 1},
			{Key: "created_at", Value: 1},
		},
	})
	return err
}
