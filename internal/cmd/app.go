package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/label-minter/server/internal/agent/graph"
	"github.com/label-minter/server/internal/agent/model"
)

// session is a loaded configuration plus the open stores and graph runner.
type session struct {
	cfg    *AppConfig
	stores *stores
	runner graph.Runner
}

func newSession(ctx context.Context) (*session, error) {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return nil, err
	}
	initLogging(cfg)

	if cfg.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is required")
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	uploader, minter, err := completionClients(ctx, cfg)
	if err != nil {
		_ = st.close()
		return nil, err
	}

	runner, err := graph.BuildLabelGraph(ctx, graph.Config{
		AgentName:        cfg.AgentName,
		APIKey:           cfg.APIKey,
		BaseURL:          cfg.BaseURL,
		ExtractionModel:  cfg.Extraction,
		ResponseModel:    cfg.Response,
		ResponsePrompt:   cfg.Prompt,
		Conversation:     cfg.Conversation,
		Label:            cfg.Label,
		Mint:             cfg.Mint,
		ConversationRepo: st.convs,
		RecordStore:      st.records,
		Uploader:         uploader,
		Minter:           minter,
	})
	if err != nil {
		_ = st.close()
		return nil, fmt.Errorf("build graph: %w", err)
	}
	return &session{cfg: cfg, stores: st, runner: runner}, nil
}

func (s *session) Close() error {
	return s.stores.close()
}

func (s *session) input(participant, conversationID, query string) model.QueryInput {
	return model.QueryInput{
		AgentID:        s.cfg.AgentName,
		ParticipantID:  participant,
		ConversationID: conversationID,
		Query:          query,
	}
}
