package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	messageCacheTTL = 24 * time.Hour
	messageCacheMax = 200
)

func messageCacheKey(conversationID uuid.UUID) string {
	return fmt.Sprintf("conversation:%s:messages", conversationID)
}

// CacheMessage appends a message payload to the conversation's cached list.
// The append only happens when the list already exists: a list rebuilt by
// FillMessageCache holds the full history, while a fresh push after TTL expiry
// would make a single message masquerade as the whole conversation. A nil
// client is a no-op.
func CacheMessage(ctx context.Context, rdb *redis.Client, payload MessagePayload) error {
	if rdb == nil {
		return nil
	}

	msgJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	key := messageCacheKey(payload.ConversationID)
	length, err := rdb.RPushX(ctx, key, msgJSON).Result()
	if err != nil {
		return fmt.Errorf("failed to cache message: %w", err)
	}
	if length == 0 {
		// No cached history to extend.
		return nil
	}
	if length > messageCacheMax {
		// The history no longer fits; a trimmed list would be served as if
		// it were complete, so stop caching this conversation.
		if err := rdb.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to drop oversized message cache: %w", err)
		}
		return nil
	}
	return rdb.Expire(ctx, key, messageCacheTTL).Err()
}

// CachedMessages returns the conversation's cached message payloads, oldest
// first. A nil client or empty cache returns an empty slice and no error.
func CachedMessages(ctx context.Context, rdb *redis.Client, conversationID uuid.UUID) ([]MessagePayload, error) {
	if rdb == nil {
		return nil, nil
	}

	raw, err := rdb.LRange(ctx, messageCacheKey(conversationID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read message cache: %w", err)
	}

	payloads := make([]MessagePayload, 0, len(raw))
	for _, msgStr := range raw {
		var payload MessagePayload
		if err := json.Unmarshal([]byte(msgStr), &payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cached message: %w", err)
		}
		payloads = append(payloads, payload)
	}
	return payloads, nil
}

// FillMessageCache replaces the conversation's cache with the given payloads.
// Histories that exceed the cache bound are not cached at all: readers treat
// a present list as the complete history.
func FillMessageCache(ctx context.Context, rdb *redis.Client, conversationID uuid.UUID, payloads []MessagePayload) error {
	if rdb == nil {
		return nil
	}
	if len(payloads) > messageCacheMax {
		return nil
	}

	key := messageCacheKey(conversationID)
	pipe := rdb.Pipeline()
	pipe.Del(ctx, key)

	for _, payload := range payloads {
		msgJSON, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}
		pipe.RPush(ctx, key, msgJSON)
	}

	pipe.Expire(ctx, key, messageCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to fill message cache: %w", err)
	}
	return nil
}

// InvalidateMessageCache drops the conversation's cached messages. Used when
// rows are mutated in place (read receipts, audio deletion).
func InvalidateMessageCache(ctx context.Context, rdb *redis.Client, conversationID uuid.UUID) {
	if rdb == nil {
		return
	}
	rdb.Del(ctx, messageCacheKey(conversationID))
}
