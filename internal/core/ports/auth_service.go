package ports

import (
	"context"
	"time"

	"github.com/chatgrid/chat-service/internal/core/domain"
)

// AuthService implements registration and primary (credential-based) login.
// Login yields a principal only; turning it into a session cookie is the
// transport layer's job.
type AuthService interface {
	Register(ctx context.Context, username, password, email string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (domain.Principal, error)

	// GetUser returns the public profile for an account.
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// TokenService mints and verifies session tokens. Both operations are pure
// aside from randomness and the caller-supplied clock.
type TokenService interface {
	// Issue mints a token for the subject with a fresh ID, iat=now and
	// exp=now+lifetime, then returns it with its encrypted wire form.
	Issue(subject string, authorities []string, now time.Time) (domain.Token, string, error)

	// Verify decodes raw and applies the expiry policy: the token is valid
	// iff issuedAt <= now < expiresAt. Any failure means "no valid session".
	Verify(raw string, now time.Time) (domain.Token, error)
}

// PrincipalResolver maps a verified token's subject to a fully populated
// authenticated principal. Resolution fails when the subject no longer maps
// to a live account; tokens are not proactively invalidated on account
// deletion, so staleness is bounded only by token lifetime.
type PrincipalResolver interface {
	Resolve(ctx context.Context, token domain.Token) (domain.Principal, error)
}
