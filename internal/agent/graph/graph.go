package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/label-minter/server/internal/agent/graph/conversations"
	"github.com/label-minter/server/internal/agent/graph/nodes"
	"github.com/label-minter/server/internal/agent/graph/observers"
	"github.com/label-minter/server/internal/agent/label"
	"github.com/label-minter/server/internal/agent/model"
	logx "github.com/label-minter/server/pkg/logger"
)

// Runner is a thin wrapper to execute the compiled graph with the public QueryInput.
type Runner interface {
	Invoke(ctx context.Context, in model.QueryInput) (string, error)
}

// Config holds everything needed to compose the label agent graph end-to-end.
// It builds the Gemini chat models, or uses ChatModels when set.
type Config struct {
	AgentName        string
	APIKey           string
	BaseURL          string
	ExtractionModel  model.ExtractionModelConfig
	ResponseModel    model.ResponseModelConfig
	ResponsePrompt   model.ResponsePromptConfig
	Conversation     model.ConversationConfig
	Label            model.LabelConfig
	Mint             model.MintConfig
	ConversationRepo model.ConversationRepository
	RecordStore      model.RecordStore
	Uploader         model.MetadataUploader
	Minter           model.Minter
	ChatModels       *nodes.ChatModels
}

// GraphConfig holds the assembled collaborators of the graph nodes.
type GraphConfig struct {
	ChatModels           *nodes.ChatModels
	MessagesManager      *conversations.MessagesManager
	Evaluator            nodes.Evaluator
	Status               nodes.StatusSource
	ResponsePromptConfig *model.ResponsePromptConfig
}

// GraphBuilder handles the construction of the agent conversation graph
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.QueryInput, *schema.Message]
}

type graphRunner struct {
	runnable compose.Runnable[model.QueryInput, *schema.Message]
}

func (r *graphRunner) Invoke(ctx context.Context, in model.QueryInput) (string, error) {
	runID := uuid.NewString()
	if in.ConversationID == "" {
		in.ConversationID = in.Key().String()
	}

	logx.Debug().
		Str("run_id", runID).
		Str("agent_id", in.AgentID).
		Str("participant_id", in.ParticipantID).
		Msg("Graph run started")

	out, err := r.runnable.Invoke(nodes.WithRunID(ctx, runID), in, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		logx.Error().Err(err).Str("run_id", runID).Msg("Graph run failed")
		return "", err
	}
	if out == nil {
		return "", nil
	}
	return out.Content, nil
}

// BuildLabelGraph wires the chat models, conversation history, label
// evaluator and status narration into a Runner.
func BuildLabelGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.ConversationRepo == nil {
		return nil, fmt.Errorf("conversation repo is nil")
	}
	if cfg.RecordStore == nil {
		return nil, fmt.Errorf("record store is nil")
	}
	if cfg.Uploader == nil || cfg.Minter == nil {
		return nil, fmt.Errorf("uploader and minter are required")
	}

	cms := cfg.ChatModels
	if cms == nil {
		var err error
		cms, err = nodes.NewChatModels(ctx, nodes.ChatModelConfig{
			APIKey:           cfg.APIKey,
			BaseURL:          cfg.BaseURL,
			ExtractionConfig: &cfg.ExtractionModel,
			RespConfig:       &cfg.ResponseModel,
		})
		if err != nil {
			return nil, err
		}
	}
	if cms.Extraction == nil {
		return nil, fmt.Errorf("extraction chat model is nil")
	}

	records := label.NewRecords(cfg.RecordStore, cfg.Label, cfg.Mint)
	evaluator := label.NewEvaluator(
		records,
		label.NewModelExtractor(cms.Extraction),
		label.NewPipeline(records, cfg.Uploader, cfg.Minter, cfg.Mint),
	)

	runnable, err := BuildGraph(ctx, &GraphConfig{
		ChatModels:           cms,
		MessagesManager:      conversations.NewMessagesManager(cfg.ConversationRepo, cfg.Conversation),
		Evaluator:            evaluator,
		Status:               label.NewStatusProvider(records, cfg.Minter, cfg.AgentName),
		ResponsePromptConfig: &cfg.ResponsePrompt,
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Label graph built successfully")
	return &graphRunner{runnable: runnable}, nil
}

// BuildGraph constructs and returns the compiled agent graph
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.QueryInput, *schema.Message], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModels == nil || config.ChatModels.Response == nil {
		return nil, fmt.Errorf("chat models are not properly initialized")
	}
	if config.MessagesManager == nil {
		return nil, fmt.Errorf("messages manager is nil")
	}
	if config.Evaluator == nil || config.Status == nil {
		return nil, fmt.Errorf("label evaluator and status source are required")
	}
	if config.ResponsePromptConfig == nil {
		return nil, fmt.Errorf("response prompt config is nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.QueryInput, *schema.Message](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

func (b *GraphBuilder) addNodes() error {
	steps := []struct {
		name string
		add  func() error
	}{
		{nodes.NodeInputConverter, func() error {
			return b.graph.AddLambdaNode(nodes.NodeInputConverter,
				nodes.NewInputConverterNode(b.config.MessagesManager),
				compose.WithStatePreHandler(nodes.NewInputConverterPreHandler()),
			)
		}},
		{nodes.NodeLabelEvaluator, func() error {
			return b.graph.AddLambdaNode(nodes.NodeLabelEvaluator,
				nodes.NewLabelEvaluatorNode(b.config.Evaluator),
				compose.WithStatePostHandler(nodes.NewLabelEvaluatorPostHandler()),
			)
		}},
		{nodes.NodeResponseAssembler, func() error {
			return b.graph.AddLambdaNode(nodes.NodeResponseAssembler,
				nodes.NewResponseAssemblerNode(b.config.MessagesManager, b.config.Status, b.config.ResponsePromptConfig),
			)
		}},
		{nodes.NodeResponseChatModel, func() error {
			return b.graph.AddChatModelNode(nodes.NodeResponseChatModel,
				b.config.ChatModels.Response,
				compose.WithStatePostHandler(nodes.NewResponseChatModelPostHandler(b.config.MessagesManager, b.config.ChatModels.ResponseModelName)),
			)
		}},
	}

	for _, s := range steps {
		if err := s.add(); err != nil {
			logx.Error().Err(err).Str("node", s.name).Msg("Error adding node")
			return fmt.Errorf("error adding node %s: %w", s.name, err)
		}
	}
	return nil
}

// addEdges creates the linear flow START → converter → evaluator → assembler → model → END.
func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, nodes.NodeInputConverter},
		{nodes.NodeInputConverter, nodes.NodeLabelEvaluator},
		{nodes.NodeLabelEvaluator, nodes.NodeResponseAssembler},
		{nodes.NodeResponseAssembler, nodes.NodeResponseChatModel},
		{nodes.NodeResponseChatModel, compose.END},
	}

	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			logx.Error().Err(err).Str("from", edge[0]).Str("to", edge[1]).Msg("Error adding edge")
			return fmt.Errorf("error adding edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.QueryInput, *schema.Message], error) {
	runnable, err := b.graph.Compile(ctx, compose.WithGraphName("LabelAgent"))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
