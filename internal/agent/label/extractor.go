package label

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"

	"github.com/label-minter/server/internal/agent/graph/parsers"
	"github.com/label-minter/server/internal/agent/graph/prompts"
	"github.com/label-minter/server/internal/agent/model"
)

// Extractor pulls explicitly stated label fields out of the latest
// participant message.
type Extractor interface {
	Extract(ctx context.Context, message string) (model.LabelExtraction, error)
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(ctx context.Context, message string) (model.LabelExtraction, error)

func (f ExtractorFunc) Extract(ctx context.Context, message string) (model.LabelExtraction, error) {
	return f(ctx, message)
}

// ModelExtractor asks a chat model for the label fields and interprets its
// JSON reply strictly: only keys present with string values count.
type ModelExtractor struct {
	chat     einomodel.BaseChatModel
	examples []prompts.ExtractionExample
}

func NewModelExtractor(chat einomodel.BaseChatModel) *ModelExtractor {
	return &ModelExtractor{chat: chat, examples: prompts.DefaultExtractionExamples}
}

func (x *ModelExtractor) Extract(ctx context.Context, message string) (model.LabelExtraction, error) {
	if strings.TrimSpace(message) == "" {
		return model.LabelExtraction{}, nil
	}

	msgs, err := prompts.RenderExtraction(ctx, message, x.examples)
	if err != nil {
		return model.LabelExtraction{}, err
	}

	out, err := x.chat.Generate(ctx, msgs)
	if err != nil {
		return model.LabelExtraction{}, fmt.Errorf("extraction model: %w", err)
	}
	if out == nil {
		return model.LabelExtraction{}, fmt.Errorf("extraction model: empty response")
	}

	return parsers.ParseExtraction(out.Content)
}

var _ Extractor = (*ModelExtractor)(nil)
