package service

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/chatgrid/chat-service/internal/core/domain"
	"github.com/chatgrid/chat-service/internal/core/token"
)

// ErrTokenExpired is the policy failure layered on top of decoding: the
// token decrypted fine but its validity window does not cover now.
var ErrTokenExpired = errors.New("token expired")

const defaultTokenTTL = 24 * time.Hour

// TokenService mints and verifies session tokens; it owns the configured
// lifetime and delegates the wire form to the codec.
type TokenService struct {
	codec    *token.Codec
	lifetime time.Duration
}

func NewTokenService(codec *token.Codec, lifetime time.Duration) *TokenService {
	if lifetime <= 0 {
		lifetime = defaultTokenTTL
	}
	return &TokenService{codec: codec, lifetime: lifetime}
}

// Issue mints a token for the subject and returns it alongside its
// encrypted wire form. Instants are truncated to seconds so a decoded token
// compares equal to the issued one.
func (s *TokenService) Issue(subject string, authorities []string, now time.Time) (domain.Token, string, error) {
	now = now.UTC().Truncate(time.Second)
	tok := domain.Token{
		ID:          uuid.New(),
		Subject:     subject,
		Authorities: authorities,
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.lifetime),
	}

	raw, err := s.codec.Encode(tok)
	if err != nil {
		return domain.Token{}, "", err
	}
	return tok, raw, nil
}

// Verify decodes raw and applies the expiry policy: valid iff
// issuedAt <= now < expiresAt. Decode failures pass through unchanged so
// callers can still tell corrupt from stale; either way there is no session.
func (s *TokenService) Verify(raw string, now time.Time) (domain.Token, error) {
	tok, err := s.codec.Decode(raw)
	if err != nil {
		return domain.Token{}, err
	}

	now = now.UTC()
	if now.Before(tok.IssuedAt) || !now.Before(tok.ExpiresAt) {
		return domain.Token{}, ErrTokenExpired
	}
	return tok, nil
}
