package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/extraction_prompt.txt
var extractionSystemPrompt string

//go:embed template/extraction_input.txt
var extractionInputPrompt string

// ExtractionExample is one worked example shown to the extraction model.
type ExtractionExample struct {
	Message string
	Output  string
}

// DefaultExtractionExamples cover a complete introduction, a future plan and
// a statement about something the participant already owns.
var DefaultExtractionExamples = []ExtractionExample{
	{
		Message: "Hi everyone! I want to create a new NFT label called Porsche 911 Carrera with this description: " +
			"An iconic sports car with a twin-turbo flat-six engine, sharp handling, and timeless design. " +
			"I want the label to be sent to the address 0x032e21f8277033fd4ddbb2127f5ebe74c7cdb09e36e72bd0071ad9bf6039b7bd",
		Output: `{"name": "Porsche 911 Carrera", "description": "An iconic sports car with a twin-turbo flat-six engine, sharp handling, and timeless design.", ` +
			`"recipient": "0x032e21f8277033fd4ddbb2127f5ebe74c7cdb09e36e72bd0071ad9bf6039b7bd"}`,
	},
	{
		Message: "I plan to buy a new Porsche 911 Carrera next year.",
		Output:  "{}",
	},
	{
		Message: "I already own many NFTs in my wallet 0x032e21f8277033fd4ddbb2127f5ebe74c7cdb09e36e72bd0071ad9bf6039b7bd",
		Output:  "{}",
	},
}

// RenderExtraction renders the system instructions and the participant's
// latest message through an Eino prompt component so prompt callbacks fire.
func RenderExtraction(ctx context.Context, message string, examples []ExtractionExample) ([]*schema.Message, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("extraction prompt: empty message")
	}
	if examples == nil {
		examples = DefaultExtractionExamples
	}

	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(extractionSystemPrompt),
		schema.UserMessage(extractionInputPrompt),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"Examples": examples,
		"Message":  message,
	})
	if err != nil {
		return nil, fmt.Errorf("extraction prompt render: %w", err)
	}
	if len(msgs) != 2 || msgs[0] == nil || msgs[1] == nil {
		return nil, fmt.Errorf("extraction prompt render: unexpected result")
	}
	return msgs, nil
}
