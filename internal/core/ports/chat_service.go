package ports

import (
	"context"

	"github.com/chatgrid/chat-service/internal/core/domain"
)

// ChatDetail is the read model for a single chat: the chat itself plus its
// message history.
type ChatDetail struct {
	Chat     *domain.Chat
	Messages []domain.Message
}

// ChatService covers the chat lifecycle and membership operations. Every
// mutation consults the authorization engine before touching storage and
// aborts without partial writes on denial.
type ChatService interface {
	Create(ctx context.Context, p domain.Principal, name string) (*domain.Chat, error)
	Get(ctx context.Context, p domain.Principal, chatID string) (*ChatDetail, error)
	Rename(ctx context.Context, p domain.Principal, chatID, name string) error
	Delete(ctx context.Context, p domain.Principal, chatID string) error
	AddMember(ctx context.Context, p domain.Principal, chatID, userID string) error
	RemoveMember(ctx context.Context, p domain.Principal, chatID, userID string) error
	ReassignRole(ctx context.Context, p domain.Principal, chatID, userID string, role domain.Role) error
}
