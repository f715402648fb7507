package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vivaha/backend/internal/docstore"
	"github.com/vivaha/backend/internal/models"
)

type MessageRepository struct {
	db *mongo.Database
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) collection() *mongo.Collection {
	return r.db.Collection(docstore.MessageCollection)
}

// Insert stores a new message.
func (r *MessageRepository) Insert(ctx context.Context, message *models.Message) error {
	if err := message.Validate(); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}
	if _, err := r.collection().InsertOne(ctx, message); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// GetByConversationID retrieves a conversation's messages ordered by
// timestamp ascending. An empty conversation yields an empty slice.
func (r *MessageRepository) GetByConversationID(ctx context.Context, conversationID string, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 200
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection().Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	return messages, nil
}

// MarkConversationRead marks every unread message addressed to the reader as
// read. Returns the number of messages updated; zero is not an error, the
// call is idempotent.
func (r *MessageRepository) MarkConversationRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	now := time.Now()
	result, err := r.collection().UpdateMany(ctx,
		bson.M{
			"conversation_id": conversationID,
			"receiver_id":     readerID,
			"is_read":         false,
		},
		bson.M{"$set": bson.M{"is_read": true, "read_at": now}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark conversation read: %w", err)
	}
	return result.ModifiedCount, nil
}
