package ports

import (
	"context"

	"github.com/chatgrid/chat-service/internal/core/domain"
)

// UserRepository defines the interface for user account persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindByID resolves a token subject to a live account. Returns
	// domain.ErrUserNotFound when the account no longer exists.
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
