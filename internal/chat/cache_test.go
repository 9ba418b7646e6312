package chat

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	srv := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: srv.Addr()})
}

func cachePayload(conversationID uuid.UUID, text string) MessagePayload {
	return MessagePayload{
		ID:             uuid.New(),
		ConversationID: conversationID,
		OriginalText:   text,
		MessageType:    "text",
	}
}

func TestCacheMessage_NilClientIsNoOp(t *testing.T) {
	assert.NoError(t, CacheMessage(context.Background(), nil, cachePayload(uuid.New(), "hola")))
}

func TestCacheMessage_DoesNotCreateList(t *testing.T) {
	rdb := newTestRedis(t)
	convID := uuid.New()
	ctx := context.Background()

	require.NoError(t, CacheMessage(ctx, rdb, cachePayload(convID, "hola")))

	// A list created by a single send would be served as the full history.
	cached, err := CachedMessages(ctx, rdb, convID)
	require.NoError(t, err)
	assert.Empty(t, cached)
}

func TestCacheMessage_AppendsToFilledCache(t *testing.T) {
	rdb := newTestRedis(t)
	convID := uuid.New()
	ctx := context.Background()

	require.NoError(t, FillMessageCache(ctx, rdb, convID, []MessagePayload{
		cachePayload(convID, "one"),
		cachePayload(convID, "two"),
	}))
	require.NoError(t, CacheMessage(ctx, rdb, cachePayload(convID, "three")))

	cached, err := CachedMessages(ctx, rdb, convID)
	require.NoError(t, err)
	require.Len(t, cached, 3)
	assert.Equal(t, "one", cached[0].OriginalText)
	assert.Equal(t, "three", cached[2].OriginalText)
}

func TestFillMessageCache_SkipsOversizedHistory(t *testing.T) {
	rdb := newTestRedis(t)
	convID := uuid.New()
	ctx := context.Background()

	payloads := make([]MessagePayload, messageCacheMax+1)
	for i := range payloads {
		payloads[i] = cachePayload(convID, fmt.Sprintf("m%d", i))
	}
	require.NoError(t, FillMessageCache(ctx, rdb, convID, payloads))

	cached, err := CachedMessages(ctx, rdb, convID)
	require.NoError(t, err)
	assert.Empty(t, cached, "a history that does not fit must not be cached at all")
}

func TestCacheMessage_DropsCacheWhenHistoryOutgrowsBound(t *testing.T) {
	rdb := newTestRedis(t)
	convID := uuid.New()
	ctx := context.Background()

	payloads := make([]MessagePayload, messageCacheMax)
	for i := range payloads {
		payloads[i] = cachePayload(convID, fmt.Sprintf("m%d", i))
	}
	require.NoError(t, FillMessageCache(ctx, rdb, convID, payloads))
	require.NoError(t, CacheMessage(ctx, rdb, cachePayload(convID, "overflow")))

	cached, err := CachedMessages(ctx, rdb, convID)
	require.NoError(t, err)
	assert.Empty(t, cached, "a trimmed cache must never be served as complete")
}

func TestInvalidateMessageCache(t *testing.T) {
	rdb := newTestRedis(t)
	convID := uuid.New()
	ctx := context.Background()

	require.NoError(t, FillMessageCache(ctx, rdb, convID, []MessagePayload{cachePayload(convID, "hi")}))
	InvalidateMessageCache(ctx, rdb, convID)

	cached, err := CachedMessages(ctx, rdb, convID)
	require.NoError(t, err)
	assert.Empty(t, cached)
}
