package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/label-minter/server/internal/agent/model"
)

func TestRenderExtraction(t *testing.T) {
	msgs, err := RenderExtraction(context.Background(), "My label is called Nike Air Max 90", nil)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "explicitly and clearly stated")
	assert.Contains(t, msgs[0].Content, "I plan to buy a new Porsche 911 Carrera next year.")
	assert.Contains(t, msgs[0].Content, "If nothing qualifies, return {}.")

	assert.Equal(t, schema.User, msgs[1].Role)
	assert.Equal(t, "Message:\nMy label is called Nike Air Max 90", strings.TrimSpace(msgs[1].Content))
}

func TestRenderExtraction_EmptyMessage(t *testing.T) {
	_, err := RenderExtraction(context.Background(), "  ", nil)
	require.Error(t, err)
}

func TestRenderResponseSystem(t *testing.T) {
	out, err := RenderResponseSystem(context.Background(),
		model.ResponsePromptConfig{CharacterBio: "a label expert."},
		ResponseContext{AgentName: "Labelbot", LabelStatus: "Label Information Status:", MintStatus: "minted!"},
	)
	require.NoError(t, err)
	assert.Contains(t, out, "You are Labelbot, a label expert.")
	assert.Contains(t, out, "Label Information Status:")
	assert.Contains(t, out, "Mint Status:\nminted!")

	out, err = RenderResponseSystem(context.Background(), model.ResponsePromptConfig{}, ResponseContext{AgentName: "Labelbot"})
	require.NoError(t, err)
	assert.NotContains(t, out, "Mint Status:")

	_, err = RenderResponseSystem(context.Background(), model.ResponsePromptConfig{}, ResponseContext{})
	require.Error(t, err)
}
