package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/label-minter/server/internal/agent/model"
)

//go:embed template/response_prompt.txt
var coreSystemPrompt string

// ResponseContext carries the provider outputs injected into the system prompt.
type ResponseContext struct {
	AgentName   string
	LabelStatus string
	MintStatus  string
}

// RenderResponseSystem renders the response system prompt and triggers prompt callbacks.
func RenderResponseSystem(ctx context.Context, config model.ResponsePromptConfig, rc ResponseContext) (string, error) {
	if strings.TrimSpace(rc.AgentName) == "" {
		return "", fmt.Errorf("response prompt render: agent name is empty")
	}

	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(coreSystemPrompt),
	)
	vars := map[string]any{
		"AgentName":    rc.AgentName,
		"CharacterBio": strings.TrimSuffix(strings.TrimSpace(config.CharacterBio), "."),
		"LabelStatus":  strings.TrimSpace(rc.LabelStatus),
		"MintStatus":   strings.TrimSpace(rc.MintStatus),
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("response prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("response prompt render: empty result")
	}
	return msgs[0].Content, nil
}
