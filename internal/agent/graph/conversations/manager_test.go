package conversations

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/label-minter/server/internal/agent/model"
	"github.com/label-minter/server/internal/agent/repo"
)

func newManager(t *testing.T, maxTurns int) (*MessagesManager, model.ConversationRepository) {
	t.Helper()
	convs, err := repo.NewMemoryConversationRepository(8, 0)
	require.NoError(t, err)
	return NewMessagesManager(convs, model.ConversationConfig{MaxTurns: maxTurns}), convs
}

func TestProcessUserMessage_ReturnsLatestMessageOnly(t *testing.T) {
	mm, convs := newManager(t, 10)
	ctx := context.Background()

	require.NoError(t, convs.AddMessage(ctx, "c1", schema.UserMessage("My friend's wallet is 0xabc")))
	require.NoError(t, convs.AddMessage(ctx, "c1",
		schema.AssistantMessage("For example a recipient like 0x742d35Cc6634C0532925a3b844Bc454e4438f44e", nil)))

	text, err := mm.ProcessUserMessage(ctx, "c1", "  I plan to buy a Porsche next year \n")
	require.NoError(t, err)
	assert.Equal(t, "I plan to buy a Porsche next year", text)

	n, err := convs.GetMessageCount(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 3, n, "the message is still kept in the history")
}

func TestProcessUserMessage_RequiresConversationID(t *testing.T) {
	mm, _ := newManager(t, 10)
	_, err := mm.ProcessUserMessage(context.Background(), " ", "hello")
	assert.Error(t, err)
}

func TestBuildResponseContext_TrimsHistory(t *testing.T) {
	mm, _ := newManager(t, 1)
	ctx := context.Background()

	for _, q := range []string{"one", "two", "three"} {
		_, err := mm.ProcessUserMessage(ctx, "c1", q)
		require.NoError(t, err)
		require.NoError(t, mm.SaveResponse(ctx, "c1", "re: "+q))
	}

	msgs, err := mm.BuildResponseContext(ctx, "c1", "system")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, "three", msgs[1].Content)
	assert.Equal(t, "re: three", msgs[2].Content)
}
