package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chatgrid/chat-service/internal/core/authz"
	"github.com/chatgrid/chat-service/internal/core/domain"
	"github.com/chatgrid/chat-service/internal/core/ports"
)

// ChatService implements the chat lifecycle and membership operations. Each
// mutation is load → authorize → mutate → persist; a denial or conflict
// aborts before anything is written, and the repository's version check
// rejects stale writes.
type ChatService struct {
	chats    ports.ChatRepository
	users    ports.UserRepository
	messages ports.MessageRepository
	logger   zerolog.Logger
}

func NewChatService(chats ports.ChatRepository, users ports.UserRepository, messages ports.MessageRepository, logger zerolog.Logger) *ChatService {
	return &ChatService{chats: chats, users: users, messages: messages, logger: logger}
}

// Create creates a chat with the caller as its ADMIN. The membership record
// is part of the same insert, so no chat is ever visible without an admin.
func (s *ChatService) Create(ctx context.Context, p domain.Principal, name string) (*domain.Chat, error) {
	if !p.IsAuthenticated() {
		return nil, domain.ErrUnauthenticated
	}

	if _, err := s.users.FindByID(ctx, p.UserID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	chat := &domain.Chat{
		ID:             uuid.NewString(),
		Name:           name,
		CreatedBy:      p.UserID,
		Members:        []domain.Membership{{UserID: p.UserID, Role: domain.RoleAdmin}},
		CreatedAt:      now,
		LastActivityAt: now,
		Version:        1,
	}

	if err := s.chats.Create(ctx, chat); err != nil {
		s.logger.Error().Err(err).Str("chat_name", name).Msg("failed to create chat")
		return nil, err
	}

	s.logger.Info().Str("chat_id", chat.ID).Str("created_by", p.UserID).Msg("chat created")
	return chat, nil
}

func (s *ChatService) Get(ctx context.Context, p domain.Principal, chatID string) (*ports.ChatDetail, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if d := authz.Authorize(p, chat, authz.OpReadChat, nil); !d.Allowed {
		return nil, denied(d)
	}

	messages, err := s.messages.FindByChat(ctx, chatID)
	if err != nil {
		return nil, err
	}

	return &ports.ChatDetail{Chat: chat, Messages: messages}, nil
}

func (s *ChatService) Rename(ctx context.Context, p domain.Principal, chatID, name string) error {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return err
	}

	if d := authz.Authorize(p, chat, authz.OpRenameChat, nil); !d.Allowed {
		return denied(d)
	}

	if name != "" {
		chat.Name = name
	}
	return s.chats.Update(ctx, chat)
}

// Delete removes the chat, its messages and its membership records as one
// logical operation. Messages go first; the chat document (which owns the
// memberships) goes last.
func (s *ChatService) Delete(ctx context.Context, p domain.Principal, chatID string) error {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return err
	}

	if d := authz.Authorize(p, chat, authz.OpDeleteChat, nil); !d.Allowed {
		return denied(d)
	}

	if err := s.messages.DeleteByChat(ctx, chatID); err != nil {
		s.logger.Error().Err(err).Str("chat_id", chatID).Msg("failed to cascade message delete")
		return err
	}
	if err := s.chats.Delete(ctx, chatID); err != nil {
		return err
	}

	s.logger.Info().Str("chat_id", chatID).Str("deleted_by", p.UserID).Msg("chat deleted")
	return nil
}

// AddMember lets any current member invite; the invitee always joins as
// MEMBER.
func (s *ChatService) AddMember(ctx context.Context, p domain.Principal, chatID, userID string) error {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return err
	}

	if d := authz.Authorize(p, chat, authz.OpAddMember, &authz.Target{UserID: userID}); !d.Allowed {
		return denied(d)
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return err
	}
	if chat.IsMember(userID) {
		return domain.ErrMemberExists
	}

	chat.Members = append(chat.Members, domain.Membership{UserID: userID, Role: domain.RoleMember})
	return s.chats.Update(ctx, chat)
}

func (s *ChatService) RemoveMember(ctx context.Context, p domain.Principal, chatID, userID string) error {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return err
	}

	if d := authz.Authorize(p, chat, authz.OpRemoveMember, &authz.Target{UserID: userID}); !d.Allowed {
		return denied(d)
	}

	role, _ := chat.RoleOf(userID)
	if role == domain.RoleAdmin && chat.AdminCount() == 1 {
		return domain.ErrLastAdmin
	}

	members := make([]domain.Membership, 0, len(chat.Members)-1)
	for _, m := range chat.Members {
		if m.UserID != userID {
			members = append(members, m)
		}
	}
	chat.Members = members

	return s.chats.Update(ctx, chat)
}

func (s *ChatService) ReassignRole(ctx context.Context, p domain.Principal, chatID, userID string, role domain.Role) error {
	if !role.IsValid() {
		return domain.ErrInvalidRole
	}

	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return err
	}

	if d := authz.Authorize(p, chat, authz.OpReassignRole, &authz.Target{UserID: userID}); !d.Allowed {
		return denied(d)
	}

	current, _ := chat.RoleOf(userID)
	if current == domain.RoleAdmin && role != domain.RoleAdmin && chat.AdminCount() == 1 {
		return domain.ErrLastAdmin
	}

	for i := range chat.Members {
		if chat.Members[i].UserID == userID {
			chat.Members[i].Role = role
			break
		}
	}

	return s.chats.Update(ctx, chat)
}
