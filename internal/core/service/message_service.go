package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chatgrid/chat-service/internal/api/metrics"
	"github.com/chatgrid/chat-service/internal/core/authz"
	"github.com/chatgrid/chat-service/internal/core/domain"
	"github.com/chatgrid/chat-service/internal/core/ports"
)

// DedupChecker abstracts the idempotency store (Redis). Lookup returns the
// stored message ID for a (chat, author, client message ID) triple, or ""
// when unseen. Scoping by author keeps one member's retries from colliding
// with another member's identically named client IDs.
type DedupChecker interface {
	Lookup(ctx context.Context, chatID, authorID, clientMessageID string) (string, error)
	Remember(ctx context.Context, chatID, authorID, clientMessageID, messageID string) error
}

// ActivityDispatcher is the interface the service uses to hand off chat
// activity events for asynchronous processing.
type ActivityDispatcher interface {
	Enqueue(event ports.ChatActivityEvent)
}

// MessageService implements message posting and moderation with the role
// matrix enforced on every mutation.
type MessageService struct {
	messages   ports.MessageRepository
	chats      ports.ChatRepository
	dedup      DedupChecker
	dispatcher ActivityDispatcher
	logger     zerolog.Logger
}

func NewMessageService(
	messages ports.MessageRepository,
	chats ports.ChatRepository,
	dedup DedupChecker,
	dispatcher ActivityDispatcher,
	logger zerolog.Logger,
) *MessageService {
	return &MessageService{
		messages:   messages,
		chats:      chats,
		dedup:      dedup,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// denied records the denial and returns its externally visible error. Every
// service-level denial funnels through here so the counter tracks the role
// matrix exactly.
func denied(d authz.Decision) error {
	metrics.AuthzDenialsTotal.WithLabelValues(string(d.Op()), string(d.Reason)).Inc()
	return d.Err()
}

// messageErr narrows chat-membership denials to message-not-found so a
// message endpoint never confirms the owning chat's existence to outsiders.
func messageErr(d authz.Decision) error {
	err := denied(d)
	if errors.Is(err, domain.ErrChatNotFound) {
		return domain.ErrMessageNotFound
	}
	return err
}

// Post creates a message in a chat the principal is a member of. When the
// client supplies a message ID that was already seen, the stored message is
// returned without a second insert.
func (s *MessageService) Post(ctx context.Context, p domain.Principal, in ports.PostMessageInput) (*domain.Message, error) {
	chat, err := s.chats.FindByID(ctx, in.ChatID)
	if err != nil {
		return nil, err
	}

	if d := authz.Authorize(p, chat, authz.OpPostMessage, nil); !d.Allowed {
		return nil, denied(d)
	}

	if in.ClientMessageID != "" {
		storedID, err := s.dedup.Lookup(ctx, in.ChatID, p.UserID, in.ClientMessageID)
		if err != nil {
			s.logger.Warn().Err(err).Str("chat_id", in.ChatID).Msg("dedup lookup failed, posting anyway")
		} else if storedID != "" {
			existing, err := s.messages.FindByID(ctx, storedID)
			if err == nil {
				s.logger.Info().Str("message_id", storedID).Str("client_message_id", in.ClientMessageID).Msg("idempotent replay")
				return existing, nil
			}
		}
	}

	now := time.Now().UTC()
	msg := &domain.Message{
		ID:        uuid.NewString(),
		ChatID:    chat.ID,
		AuthorID:  p.UserID,
		Body:      in.Body,
		CreatedAt: now,
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		s.logger.Error().Err(err).Str("chat_id", in.ChatID).Msg("failed to create message")
		return nil, err
	}
	metrics.MessagesPostedTotal.Inc()

	if in.ClientMessageID != "" {
		if err := s.dedup.Remember(ctx, in.ChatID, p.UserID, in.ClientMessageID, msg.ID); err != nil {
			s.logger.Warn().Err(err).Str("message_id", msg.ID).Msg("failed to set dedup key")
		}
	}

	s.dispatcher.Enqueue(ports.ChatActivityEvent{ChatID: chat.ID, MessageID: msg.ID, At: now})
	return msg, nil
}

func (s *MessageService) Get(ctx context.Context, p domain.Principal, messageID string) (*domain.Message, error) {
	msg, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	chat, err := s.chats.FindByID(ctx, msg.ChatID)
	if err != nil {
		if errors.Is(err, domain.ErrChatNotFound) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, err
	}

	if d := authz.Authorize(p, chat, authz.OpReadMessage, nil); !d.Allowed {
		return nil, messageErr(d)
	}
	return msg, nil
}

// Edit is the author's exclusive right, and only through the chat the
// message actually belongs to.
func (s *MessageService) Edit(ctx context.Context, p domain.Principal, chatID, messageID, body string) error {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return err
	}
	msg, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		return err
	}

	if d := authz.Authorize(p, chat, authz.OpEditMessage, &authz.Target{Message: msg}); !d.Allowed {
		return messageErr(d)
	}

	if body != "" {
		msg.Body = body
	}
	msg.EditedAt = time.Now().UTC()
	return s.messages.Update(ctx, msg)
}

// Delete is allowed for the author, or for an admin or moderator of the
// owning chat.
func (s *MessageService) Delete(ctx context.Context, p domain.Principal, chatID, messageID string) error {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return err
	}
	msg, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		return err
	}

	if d := authz.Authorize(p, chat, authz.OpDeleteMessage, &authz.Target{Message: msg}); !d.Allowed {
		return messageErr(d)
	}

	if err := s.messages.Delete(ctx, messageID); err != nil {
		return err
	}

	s.logger.Info().Str("message_id", messageID).Str("chat_id", chatID).Str("deleted_by", p.UserID).Msg("message deleted")
	return nil
}
