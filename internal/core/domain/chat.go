package domain

import (
	"errors"
	"time"
)

// Role is a chat-scoped role. A user's role in one chat says nothing about
// any other chat.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleModerator Role = "MODERATOR"
	RoleMember    Role = "MEMBER"
)

var ErrChatNotFound = errors.New("chat not found")
var ErrMemberNotFound = errors.New("member not found in chat")
var ErrMemberExists = errors.New("user is already a chat member")
var ErrLastAdmin = errors.New("chat must keep at least one admin")
var ErrVersionConflict = errors.New("chat was modified concurrently")
var ErrInvalidRole = errors.New("invalid chat role")
var ErrForbidden = errors.New("access forbidden")
var ErrUnauthenticated = errors.New("authentication required")

// IsValid reports whether r is one of the three known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleMember:
		return true
	}
	return false
}

// CanModerate reports whether the role may edit chat metadata and remove
// other users' messages.
func (r Role) CanModerate() bool {
	return r == RoleAdmin || r == RoleModerator
}

// Membership ties one user to one chat with exactly one role. A chat holds
// at most one membership per user.
type Membership struct {
	UserID string `json:"user_id" bson:"user_id"`
	Role   Role   `json:"role" bson:"role"`
}

// Chat is the aggregate root. It owns its membership records; members are
// referenced by user ID only, never embedded. Version backs the optimistic
// concurrency check on every membership/metadata mutation.
type Chat struct {
	ID             string       `json:"id" bson:"_id,omitempty"`
	Name           string       `json:"name" bson:"name"`
	CreatedBy      string       `json:"created_by" bson:"created_by"`
	Members        []Membership `json:"members" bson:"members"`
	CreatedAt      time.Time    `json:"created_at" bson:"created_at"`
	LastActivityAt time.Time    `json:"last_activity_at" bson:"last_activity_at"`
	MessageCount   int64        `json:"message_count" bson:"message_count"`
	Version        int64        `json:"-" bson:"version"`
}

// RoleOf returns the role of the given user in this chat, and whether the
// user is a member at all.
func (c *Chat) RoleOf(userID string) (Role, bool) {
	for _, m := range c.Members {
		if m.UserID == userID {
			return m.Role, true
		}
	}
	return "", false
}

// IsMember reports whether the user holds any role in this chat.
func (c *Chat) IsMember(userID string) bool {
	_, ok := c.RoleOf(userID)
	return ok
}

// AdminCount returns the number of members holding RoleAdmin.
func (c *Chat) AdminCount() int {
	n := 0
	for _, m := range c.Members {
		if m.Role == RoleAdmin {
			n++
		}
	}
	return n
}
