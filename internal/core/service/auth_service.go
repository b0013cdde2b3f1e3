package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/chatgrid/chat-service/internal/core/domain"
	"github.com/chatgrid/chat-service/internal/core/ports"
)

// AuthService implements registration and primary login against stored
// credentials.
type AuthService struct {
	repo ports.UserRepository
}

func NewAuthService(repo ports.UserRepository) *AuthService {
	return &AuthService{repo: repo}
}

func (s *AuthService) Register(ctx context.Context, username, password, email string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Login verifies the credentials and returns an authenticated principal.
// The principal shape is identical to what cookie re-authentication
// produces, so downstream authorization cannot tell the two paths apart.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.Principal, error) {
	if username == "" || password == "" {
		return domain.Anonymous, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		// Unknown username and wrong password are indistinguishable to the
		// caller.
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Anonymous, domain.ErrInvalidCredentials
		}
		return domain.Anonymous, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.Anonymous, domain.ErrInvalidCredentials
	}

	return domain.NewPrincipal(user.ID, user.Username, []string{domain.AuthorityUser}), nil
}

// GetUser returns the stored account for id. The password hash never leaves
// the domain model in responses (it is excluded from JSON).
func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}
