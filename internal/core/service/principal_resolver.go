package service

import (
	"context"
	"errors"

	"github.com/chatgrid/chat-service/internal/core/domain"
	"github.com/chatgrid/chat-service/internal/core/ports"
)

// PrincipalResolver turns a verified token into an authenticated principal
// by mapping the subject to a live account. Accounts deleted after issuance
// fail resolution here; that is the only staleness bound a stateless token
// scheme provides.
type PrincipalResolver struct {
	users ports.UserRepository
}

func NewPrincipalResolver(users ports.UserRepository) *PrincipalResolver {
	return &PrincipalResolver{users: users}
}

func (r *PrincipalResolver) Resolve(ctx context.Context, tok domain.Token) (domain.Principal, error) {
	user, err := r.users.FindByID(ctx, tok.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Anonymous, domain.ErrUnknownSubject
		}
		return domain.Anonymous, err
	}

	return domain.NewPrincipal(user.ID, user.Username, tok.Authorities), nil
}
