package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/label-minter/server/internal/agent/graph/conversations"
	"github.com/label-minter/server/internal/agent/graph/prompts"
	"github.com/label-minter/server/internal/agent/model"
	logx "github.com/label-minter/server/pkg/logger"
)

// Evaluator runs the label sequence for one message.
type Evaluator interface {
	Evaluate(ctx context.Context, key model.RecordKey, text string) model.Evaluation
}

// StatusSource narrates stored label and mint state for the response model.
type StatusSource interface {
	AgentName() string
	LabelStatus(ctx context.Context, key model.RecordKey) string
	MintStatus(ctx context.Context, key model.RecordKey) string
}

// NewInputConverterPreHandler resets the local state for a new message.
func NewInputConverterPreHandler() func(context.Context, model.QueryInput, *model.AppState) (model.QueryInput, error) {
	return func(ctx context.Context, in model.QueryInput, s *model.AppState) (model.QueryInput, error) {
		s.RunID = RunIDFrom(ctx)
		s.Key = in.Key()
		s.ConversationID = in.ConversationID
		s.Query = in.Query
		s.Evaluation = nil
		return in, nil
	}
}

// NewInputConverterNode stores the participant message and hands it, alone,
// to the label evaluator.
func NewInputConverterNode(mm *conversations.MessagesManager) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, input model.QueryInput) (model.LabelTurn, error) {
		key := input.Key()
		if !key.Valid() {
			return model.LabelTurn{}, fmt.Errorf("agent and participant ids are required")
		}
		text, err := mm.ProcessUserMessage(ctx, input.ConversationID, input.Query)
		if err != nil {
			return model.LabelTurn{}, fmt.Errorf("error saving user message: %w", err)
		}
		return model.LabelTurn{Key: key, Text: text}, nil
	})
}

// NewLabelEvaluatorNode runs extraction, merge and the mint pipeline. It
// never fails the graph; problems are carried in the Evaluation.
func NewLabelEvaluatorNode(evaluator Evaluator) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, turn model.LabelTurn) (model.Evaluation, error) {
		return evaluator.Evaluate(ctx, turn.Key, turn.Text), nil
	})
}

// NewLabelEvaluatorPostHandler keeps the evaluation for the assembler.
func NewLabelEvaluatorPostHandler() func(context.Context, model.Evaluation, *model.AppState) (model.Evaluation, error) {
	return func(ctx context.Context, out model.Evaluation, state *model.AppState) (model.Evaluation, error) {
		ev := out
		state.Evaluation = &ev

		log := logx.Debug().
			Str("run_id", state.RunID).
			Str("agent_id", out.Key.AgentID).
			Str("participant_id", out.Key.ParticipantID).
			Bool("skipped", out.Skipped).
			Bool("changed", out.Changed).
			Bool("completed", out.Completed)
		if out.Mint != nil {
			log = log.Str("mint_status", string(out.Mint.Status)).Str("tx_hash", out.Mint.TransactionID)
		}
		if out.Err != nil {
			log = log.AnErr("evaluation_error", out.Err)
		}
		log.Msg("Label evaluation finished")
		return out, nil
	}
}

// NewResponseAssemblerNode builds the response model input: the character
// prompt with label and mint narration, followed by the history.
func NewResponseAssemblerNode(
	mm *conversations.MessagesManager,
	status StatusSource,
	responsePromptConfig *model.ResponsePromptConfig,
) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, _ model.Evaluation) ([]*schema.Message, error) {
		var (
			key            model.RecordKey
			conversationID string
		)
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			if state.Evaluation == nil {
				return fmt.Errorf("missing label evaluation in state")
			}
			key = state.Key
			conversationID = state.ConversationID
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		respSysPrompt, err := prompts.RenderResponseSystem(ctx, *responsePromptConfig, prompts.ResponseContext{
			AgentName:   status.AgentName(),
			LabelStatus: status.LabelStatus(ctx, key),
			MintStatus:  status.MintStatus(ctx, key),
		})
		if err != nil {
			return nil, fmt.Errorf("generate response prompt: %w", err)
		}

		messages, err := mm.BuildResponseContext(ctx, conversationID, respSysPrompt)
		if err != nil {
			return nil, fmt.Errorf("build response context: %w", err)
		}
		return messages, nil
	})
}

// NewResponseChatModelPostHandler logs usage and saves the final assistant reply.
func NewResponseChatModelPostHandler(
	mm *conversations.MessagesManager,
	modelName string,
) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AppState) (*schema.Message, error) {
		if out == nil {
			return out, nil
		}

		if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
			logx.Debug().
				Str("run_id", state.RunID).
				Str("conversation_id", state.ConversationID).
				Str("node", NodeResponseChatModel).
				Str("model", modelName).
				Int("prompt_tokens", out.ResponseMeta.Usage.PromptTokens).
				Int("completion_tokens", out.ResponseMeta.Usage.CompletionTokens).
				Int("total_tokens", out.ResponseMeta.Usage.TotalTokens).
				Msg("LLM usage")
		}

		if out.Role == schema.Assistant && strings.TrimSpace(out.Content) != "" {
			if err := mm.SaveResponse(ctx, state.ConversationID, out.Content); err != nil {
				logx.Error().
					Str("conversation_id", state.ConversationID).
					Err(err).
					Msg("Error saving assistant response")
			}
		}
		return out, nil
	}
}
