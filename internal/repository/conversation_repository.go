package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vivaha/backend/internal/docstore"
	"github.com/vivaha/backend/internal/models"
)

var ErrConversationNotFound = fmt.Errorf("conversation not found")

type ConversationRepository struct {
	db *mongo.Database
}

func NewConversationRepository(db *mongo.Database) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) collection() *mongo.Collection {
	return r.db.Collection(docstore.ConversationCollection)
}

// GetByOwner retrieves all conversation summaries owned by a user, ordered by
// last message time descending. Summaries with no messages yet sort after all
// dated ones; ties break on conversation id so the order is stable.
func (r *ConversationRepository) GetByOwner(ctx context.Context, ownerID string) ([]models.Conversation, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "last_message_time", Value: -1},
		{Key: "conversation_id", Value: 1},
	})

	cursor, err := r.collection().Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversations: %w", err)
	}
	defer cursor.Close(ctx)

	conversations := []models.Conversation{}
	if err := cursor.All(ctx, &conversations); err != nil {
		return nil, fmt.Errorf("failed to decode conversations: %w", err)
	}

	return conversations, nil
}

// Get retrieves one summary by owner and conversation id.
func (r *ConversationRepository) Get(ctx context.Context, ownerID, conversationID string) (*models.Conversation, error) {
	conversation := &models.Conversation{}
	err := r.collection().FindOne(ctx, bson.M{
		"owner_id":        ownerID,
		"conversation_id": conversationID,
	}).Decode(conversation)

	if err == mongo.ErrNoDocuments {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	return conversation, nil
}

// Upsert creates or replaces a summary for its owner.
func (r *ConversationRepository) Upsert(ctx context.Context, conv *models.Conversation) error {
	filter := bson.M{
		"owner_id":        conv.OwnerID,
		"conversation_id": conv.ConversationID,
	}
	_, err := r.collection().ReplaceOne(ctx, filter, conv, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert conversation: %w", err)
	}
	return nil
}

// IsParticipant checks whether an account holds a summary for the
// conversation, i.e. is one of its two parties.
func (r *ConversationRepository) IsParticipant(ctx context.Context, accountID, conversationID string) (bool, error) {
	count, err := r.collection().CountDocuments(ctx, bson.M{
		"owner_id":        accountID,
		"conversation_id": conversationID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check participation: %w", err)
	}
	return count > 0, nil
}

// ApplyMessage rewrites both parties' summaries after a send: preview and
// timestamp on both sides, unread increment on the receiver's side only.
func (r *ConversationRepository) ApplyMessage(ctx context.Context, conversationID, senderID, receiverID, preview string, ts time.Time) error {
	_, err := r.collection().UpdateOne(ctx,
		bson.M{"owner_id": senderID, "conversation_id": conversationID},
		bson.M{"$set": bson.M{"last_message": preview, "last_message_time": ts}},
	)
	if err != nil {
		return fmt.Errorf("failed to update sender summary: %w", err)
	}

	_, err = r.collection().UpdateOne(ctx,
		bson.M{"owner_id": receiverID, "conversation_id": conversationID},
		bson.M{
			"$set": bson.M{"last_message": preview, "last_message_time": ts},
			"$inc": bson.M{"unread_count": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to update receiver summary: %w", err)
	}

	return nil
}

// ResetUnread zeroes the owner's unread count for a conversation.
func (r *ConversationRepository) ResetUnread(ctx context.Context, ownerID, conversationID string) error {
	_, err := r.collection().UpdateOne(ctx,
		bson.M{"owner_id": ownerID, "conversation_id": conversationID},
		bson.M{"$set": bson.M{"unread_count": 0}},
	)
	if err != nil {
		return fmt.Errorf("failed to reset unread count: %w", err)
	}
	return nil
}

// TotalUnread sums unread counts across all of a user's conversations.
func (r *ConversationRepository) TotalUnread(ctx context.Context, ownerID string) (int, error) {
	cursor, err := r.collection().Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"owner_id": ownerID}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$unread_count"},
		}}},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to sum unread counts: %w", err)
	}
	defer cursor.Close(ctx)

	var result []struct {
		Total int `bson:"total"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return 0, fmt.Errorf("failed to decode unread sum: %w", err)
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].Total, nil
}

// Delete removes the owner's summary. The other party's summary is untouched;
// the feed stops yielding the conversation to the deleting user on the next
// snapshot.
func (r *ConversationRepository) Delete(ctx context.Context, ownerID, conversationID string) error {
	result, err := r.collection().DeleteOne(ctx, bson.M{
		"owner_id":        ownerID,
		"conversation_id": conversationID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// List returns distinct conversations for the admin console, keyed on
// conversation id with one summary per thread, optionally filtered by a
// case-insensitive participant name search and paginated by id cursor.
func (r *ConversationRepository) List(ctx context.Context, limit int, startAfter, search string) ([]models.Conversation, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	filter := bson.M{}
	if startAfter != "" {
		filter["conversation_id"] = bson.M{"$gt": startAfter}
	}
	if search != "" {
		filter["other_user_name"] = bson.M{"$regex": search, "$options": "i"}
	}

	opts := options.Find().SetSort(bson.D{{Key: "conversation_id", Value: 1}})
	cursor, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer cursor.Close(ctx)

	seen := map[string]bool{}
	conversations := []models.Conversation{}
	for cursor.Next(ctx) {
		var conv models.Conversation
		if err := cursor.Decode(&conv); err != nil {
			return nil, fmt.Errorf("failed to decode conversation: %w", err)
		}
		key := strings.TrimSpace(conv.ConversationID)
		if seen[key] {
			continue
		}
		seen[key] = true
		conversations = append(conversations, conv)
		if len(conversations) >= limit {
			break
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversations: %w", err)
	}

	return conversations, nil
}
