package ports

import (
	"context"
	"time"

	"github.com/chatgrid/chat-service/internal/core/domain"
)

// ChatRepository handles chat persistence. A chat document owns its
// membership records, so membership mutations go through Update and are
// covered by the same optimistic-concurrency contract.
type ChatRepository interface {
	// Create inserts the chat together with its initial membership records
	// as a single write; a chat is never visible without its creator admin.
	Create(ctx context.Context, chat *domain.Chat) error

	FindByID(ctx context.Context, id string) (*domain.Chat, error)

	// Update persists the chat conditional on the version it was read at and
	// bumps the version. Returns domain.ErrVersionConflict when a concurrent
	// writer got there first, so a stale read never overwrites newer state.
	Update(ctx context.Context, chat *domain.Chat) error

	// Delete removes the chat document (memberships cascade with it).
	Delete(ctx context.Context, id string) error

	// RecordActivity bumps last_activity_at and the message counter without
	// touching the version; it is an unconditional atomic increment.
	RecordActivity(ctx context.Context, chatID string, at time.Time) error
}
