package ports

import (
	"context"

	"github.com/chatgrid/chat-service/internal/core/domain"
)

// MessageRepository handles message persistence.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	FindByID(ctx context.Context, id string) (*domain.Message, error)
	FindByChat(ctx context.Context, chatID string) ([]domain.Message, error)
	Update(ctx context.Context, msg *domain.Message) error
	Delete(ctx context.Context, id string) error
	// DeleteByChat removes every message of a chat; part of chat deletion's
	// cascade.
	DeleteByChat(ctx context.Context, chatID string) error
}
