package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/chatgrid/chat-service/internal/api/middleware"
	"github.com/chatgrid/chat-service/internal/core/domain"
	"github.com/chatgrid/chat-service/internal/core/ports"
)

// ctxPrincipal extracts the principal resolved by the session middleware.
// All service calls receive it as-is, including Anonymous: denial semantics
// belong to the authorization engine, not the transport.
func ctxPrincipal(c echo.Context) domain.Principal {
	return middleware.Principal(c)
}

// --- Domain → response mapping ---

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

func toMessageResponse(m *domain.Message) messageResponse {
	out := messageResponse{
		ID:        m.ID,
		ChatID:    m.ChatID,
		AuthorID:  m.AuthorID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
	if !m.EditedAt.IsZero() {
		edited := m.EditedAt
		out.EditedAt = &edited
	}
	return out
}

func toChatResponse(chat *domain.Chat, messages []domain.Message) chatResponse {
	members := make([]memberResponse, 0, len(chat.Members))
	for _, m := range chat.Members {
		members = append(members, memberResponse{UserID: m.UserID, Role: string(m.Role)})
	}

	msgs := make([]messageResponse, 0, len(messages))
	for i := range messages {
		msgs = append(msgs, toMessageResponse(&messages[i]))
	}

	out := chatResponse{
		ID:           chat.ID,
		Name:         chat.Name,
		CreatedBy:    chat.CreatedBy,
		Members:      members,
		Messages:     msgs,
		CreatedAt:    chat.CreatedAt,
		MessageCount: chat.MessageCount,
	}
	if !chat.LastActivityAt.IsZero() {
		last := chat.LastActivityAt
		out.LastActivityAt = &last
	}
	return out
}

func toChatDetailResponse(detail *ports.ChatDetail) chatResponse {
	return toChatResponse(detail.Chat, detail.Messages)
}
