package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/chatgrid/chat-service/internal/core/domain"
)

const collectionChats = "chats"

// ChatRepository stores each chat as a single document embedding its
// membership list, so one conditional replace covers chat metadata and
// members atomically.
type ChatRepository struct {
	col *mongo.Collection
}

func NewChatRepository(db *mongo.Database) *ChatRepository {
	return &ChatRepository{col: db.Collection(collectionChats)}
}

func (r *ChatRepository) Create(ctx context.Context, chat *domain.Chat) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, chat); err != nil {
		return fmt.Errorf("insert chat: %w", err)
	}
	return nil
}

func (r *ChatRepository) FindByID(ctx context.Context, id string) (*domain.Chat, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var chat domain.Chat
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&chat); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrChatNotFound
		}
		return nil, fmt.Errorf("find chat: %w", err)
	}
	return &chat, nil
}

// Update replaces the chat document only if the stored version still matches
// the version the caller read. A lost race surfaces as ErrVersionConflict,
// never as a silent overwrite.
func (r *ChatRepository) Update(ctx context.Context, chat *domain.Chat) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	readVersion := chat.Version
	replacement := *chat
	replacement.Version = readVersion + 1

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": chat.ID, "version": readVersion}, &replacement)
	if err != nil {
		return fmt.Errorf("update chat: %w", err)
	}
	if res.MatchedCount == 0 {
		// Either the chat is gone or someone else bumped the version.
		var exists domain.Chat
		findErr := r.col.FindOne(ctx, bson.M{"_id": chat.ID}).Decode(&exists)
		if errors.Is(findErr, mongo.ErrNoDocuments) {
			return domain.ErrChatNotFound
		}
		return domain.ErrVersionConflict
	}
	return nil
}

func (r *ChatRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrChatNotFound
	}
	return nil
}

// RecordActivity bumps last_activity_at and message_count without touching
// the version: activity tracking must not conflict with membership writes.
func (r *ChatRepository) RecordActivity(ctx context.Context, chatID string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": chatID},
		bson.M{
			"$set": bson.M{"last_activity_at": at},
			"$inc": bson.M{"message_count": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrChatNotFound
	}
	return nil
}

// EnsureIndexes creates the member lookup index.
func (r *ChatRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "members.user_id", Value: 1}},
	})
	return err
}
