package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chatgrid/chat-service/internal/api/metrics"
)

const dedupTTL = time.Hour

// DedupChecker provides message idempotency checks backed by Redis.
// Key format: msgdedup:<chat_id>:<author_id>:<client_message_id>, value: the
// stored message ID. A replay of a client message ID inside the TTL window
// maps back to the message created by the first attempt; the author
// component keeps one member's retries from colliding with another's.
type DedupChecker struct {
	client *redis.Client
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client) *DedupChecker {
	return &DedupChecker{client: client}
}

// Lookup returns the message ID stored for this (chat, author, client
// message ID) triple, or "" when the triple has not been seen.
func (d *DedupChecker) Lookup(ctx context.Context, chatID, authorID, clientMessageID string) (string, error) {
	id, err := d.client.Get(ctx, d.key(chatID, authorID, clientMessageID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.MessagesDedupTotal.WithLabelValues("miss").Inc()
			return "", nil
		}
		return "", fmt.Errorf("dedup lookup: %w", err)
	}
	metrics.MessagesDedupTotal.WithLabelValues("hit").Inc()
	return id, nil
}

// Remember records the message created for this client message ID (expires
// after dedupTTL).
func (d *DedupChecker) Remember(ctx context.Context, chatID, authorID, clientMessageID, messageID string) error {
	return d.client.Set(ctx, d.key(chatID, authorID, clientMessageID), messageID, dedupTTL).Err()
}

func (d *DedupChecker) key(chatID, authorID, clientMessageID string) string {
	return fmt.Sprintf("msgdedup:%s:%s:%s", chatID, authorID, clientMessageID)
}
