package ports

import (
	"context"
	"time"

	"github.com/chatgrid/chat-service/internal/core/domain"
)

// PostMessageInput carries the data to create a message. ClientMessageID is
// an optional client-chosen idempotency key: replays within the dedup window
// return the originally stored message without a second insert.
type PostMessageInput struct {
	ChatID          string
	Body            string
	ClientMessageID string
}

// MessageService covers posting, reading, editing and deleting messages,
// with the role matrix enforced on every mutation.
type MessageService interface {
	Post(ctx context.Context, p domain.Principal, in PostMessageInput) (*domain.Message, error)
	Get(ctx context.Context, p domain.Principal, messageID string) (*domain.Message, error)
	Edit(ctx context.Context, p domain.Principal, chatID, messageID, body string) error
	Delete(ctx context.Context, p domain.Principal, chatID, messageID string) error
}

// ChatActivityEvent records that a message landed in a chat. Events are
// processed asynchronously, sharded per chat so per-chat ordering holds.
type ChatActivityEvent struct {
	ChatID    string
	MessageID string
	At        time.Time
}

// ActivityService consumes chat activity events from the dispatcher.
type ActivityService interface {
	Process(ctx context.Context, event ChatActivityEvent) error
}
