package domain

import (
	"errors"
	"time"
)

var ErrMessageNotFound = errors.New("message not found")

// Message is owned by exactly one (chat, author) pair. Editing is the
// author's exclusive right; deletion rights extend to the owning chat's
// admins and moderators.
type Message struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	ChatID    string    `json:"chat_id" bson:"chat_id"`
	AuthorID  string    `json:"author_id" bson:"author_id"`
	Body      string    `json:"body" bson:"body"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	EditedAt  time.Time `json:"edited_at,omitempty" bson:"edited_at,omitempty"`
}
