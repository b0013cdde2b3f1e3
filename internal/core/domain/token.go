package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// AuthorityUser is the baseline authority carried by every account. Chat
// roles are not authorities; they live in chat membership records.
const AuthorityUser = "USER"

// ErrUnknownSubject is returned when a verified token's subject no longer
// maps to a live account.
var ErrUnknownSubject = errors.New("token subject is not a known identity")

// Token is an immutable, time-bounded assertion of identity and granted
// authorities. It is transported only as an encrypted compact string inside
// the session cookie and is never persisted server-side.
type Token struct {
	ID          uuid.UUID
	Subject     string
	Authorities []string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// Principal is the resolved actor performing a request. The zero value is
// the anonymous principal; an authenticated principal is only produced by
// credential verification or by a verified session token.
type Principal struct {
	UserID        string
	Username      string
	Authorities   []string
	authenticated bool
}

// Anonymous is the principal attached to requests carrying no valid session.
var Anonymous = Principal{}

// NewPrincipal builds an authenticated principal. Both construction paths
// (primary login and cookie re-authentication) go through here so the two
// are interchangeable for authorization purposes.
func NewPrincipal(userID, username string, authorities []string) Principal {
	return Principal{
		UserID:        userID,
		Username:      username,
		Authorities:   authorities,
		authenticated: true,
	}
}

// IsAuthenticated reports whether the principal represents a verified
// identity. All authorization checks fail closed on false.
func (p Principal) IsAuthenticated() bool {
	return p.authenticated && p.UserID != ""
}
