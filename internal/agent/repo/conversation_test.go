package repo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisConversationRepository(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	r := NewRedisConversationRepository(rdb, 15*time.Minute)

	empty, err := r.LoadHistory(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, empty.Messages)

	require.NoError(t, r.AddMessage(ctx, "c1", schema.UserMessage("hello")))
	require.NoError(t, r.AddMessage(ctx, "c1", schema.AssistantMessage("hi there", nil)))
	require.Error(t, r.AddMessage(ctx, "c1", nil))

	n, err := r.GetMessageCount(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 15*time.Minute, mr.TTL("conversation:c1:messages"))

	h, err := r.LoadHistory(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, h.Messages, 2)
	assert.Equal(t, schema.User, h.Messages[0].Role)
	assert.Equal(t, "hi there", h.Messages[1].Content)

	require.NoError(t, r.ClearHistory(ctx, "c1"))
	n, err = r.GetMessageCount(ctx, "c1")
	require.NoError(t, err)
	assert.Zero(t, n)
}
