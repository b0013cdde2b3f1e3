package handler

import "time"

// --- Request / Response types ---

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
	Email    string `json:"email"    validate:"omitempty,email"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type createChatRequest struct {
	Name string `json:"name" validate:"required,min=1,max=128"`
}

type renameChatRequest struct {
	ChatID string `json:"chat_id" validate:"required"`
	Name   string `json:"name"    validate:"required,min=1,max=128"`
}

type deleteChatRequest struct {
	ChatID string `json:"chat_id" validate:"required"`
}

type addMemberRequest struct {
	ChatID string `json:"chat_id" validate:"required"`
	UserID string `json:"user_id" validate:"required"`
}

type removeMemberRequest struct {
	ChatID string `json:"chat_id" validate:"required"`
	UserID string `json:"user_id" validate:"required"`
}

type reassignRoleRequest struct {
	ChatID string `json:"chat_id" validate:"required"`
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role"    validate:"required,oneof=ADMIN MODERATOR MEMBER"`
}

type memberResponse struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type chatResponse struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	CreatedBy      string            `json:"created_by"`
	Members        []memberResponse  `json:"members"`
	Messages       []messageResponse `json:"messages,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	LastActivityAt *time.Time        `json:"last_activity_at,omitempty"`
	MessageCount   int64             `json:"message_count"`
}

type postMessageRequest struct {
	ChatID          string `json:"chat_id"           validate:"required"`
	Body            string `json:"body"              validate:"required,max=4096"`
	ClientMessageID string `json:"client_message_id" validate:"omitempty,max=128"`
}

type editMessageRequest struct {
	ChatID    string `json:"chat_id"    validate:"required"`
	MessageID string `json:"message_id" validate:"required"`
	Body      string `json:"body"       validate:"required,max=4096"`
}

type deleteMessageRequest struct {
	ChatID    string `json:"chat_id"    validate:"required"`
	MessageID string `json:"message_id" validate:"required"`
}

type messageResponse struct {
	ID        string     `json:"id"`
	ChatID    string     `json:"chat_id"`
	AuthorID  string     `json:"author_id"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
}
