package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/chatgrid/chat-service/internal/core/ports"
)

type activityService struct {
	chats ports.ChatRepository
	log   zerolog.Logger
}

// NewActivityService returns an ActivityService that folds message events
// into the owning chat's activity fields. Events for the same chat arrive in
// order (the dispatcher shards by chat ID), so last_activity_at only moves
// forward.
func NewActivityService(chats ports.ChatRepository, log zerolog.Logger) ports.ActivityService {
	return &activityService{chats: chats, log: log}
}

func (s *activityService) Process(ctx context.Context, event ports.ChatActivityEvent) error {
	if err := s.chats.RecordActivity(ctx, event.ChatID, event.At); err != nil {
		return fmt.Errorf("record activity: %w", err)
	}

	s.log.Debug().Str("chat_id", event.ChatID).Str("message_id", event.MessageID).Msg("chat activity recorded")
	return nil
}
