package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/label-minter/server/internal/agent/model"
	"github.com/label-minter/server/internal/agent/repo"
	"github.com/label-minter/server/internal/core"
	logx "github.com/label-minter/server/pkg/logger"
	"github.com/label-minter/server/pkg/pinata"
	pkgredis "github.com/label-minter/server/pkg/redis"
	"github.com/label-minter/server/pkg/starknet"
)

const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// AppConfig defines all configurable parameters of the agent, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"ENVIRONMENT" default:"development"`
	AgentName   string           `envconfig:"AGENT_NAME" default:"Labelbot"`

	// Infrastructure
	StoreBackend    string `envconfig:"STORE_BACKEND" default:"redis"`
	MemoryStoreSize int    `envconfig:"MEMORY_STORE_SIZE" default:"10000"`
	Redis           pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Extraction   model.ExtractionModelConfig
	Response     model.ResponseModelConfig
	Prompt       model.ResponsePromptConfig
	Conversation model.ConversationConfig
	Label        model.LabelConfig
	Mint         model.MintConfig

	// Completion action
	DryRun   bool `envconfig:"MINT_DRY_RUN" default:"false"`
	Pinata   pinata.Config
	Starknet starknet.Config
}

// loadConfig reads the dotenv file when present, then the environment.
func loadConfig(path string) (*AppConfig, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	if cfg.StoreBackend != BackendRedis && cfg.StoreBackend != BackendMemory {
		return nil, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendRedis, BackendMemory, cfg.StoreBackend)
	}
	if err := cfg.Mint.Validate(); err != nil {
		return nil, err
	}
	if agentOverride != "" {
		cfg.AgentName = agentOverride
	}
	return &cfg, nil
}

// stores bundles the persistence used by one command run.
type stores struct {
	records model.RecordStore
	convs   model.ConversationRepository
	close   func() error
}

func openStores(ctx context.Context, cfg *AppConfig) (*stores, error) {
	if cfg.StoreBackend == BackendMemory {
		records, err := repo.NewMemoryRecordStore(cfg.MemoryStoreSize)
		if err != nil {
			return nil, err
		}
		convs, err := repo.NewMemoryConversationRepository(cfg.MemoryStoreSize, cfg.Conversation.TTL)
		if err != nil {
			return nil, err
		}
		logx.Info().Msg("Using in-memory stores")
		return &stores{records: records, convs: convs, close: func() error { return nil }}, nil
	}

	rdb, err := cfg.Redis.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialise redis client: %w", err)
	}
	logx.Info().Msg("Connected to Redis successfully")
	return &stores{
		records: repo.NewRedisRecordStore(rdb),
		convs:   repo.NewRedisConversationRepository(rdb, cfg.Conversation.TTL),
		close:   rdb.Close,
	}, nil
}

// completionClients returns the uploader and minter of the mint pipeline.
func completionClients(ctx context.Context, cfg *AppConfig) (model.MetadataUploader, model.Minter, error) {
	if cfg.DryRun {
		logx.Warn().Msg("MINT_DRY_RUN is set; labels are not pinned or minted")
		return dryRunUploader{}, dryRunMinter{}, nil
	}
	up, err := pinata.New(cfg.Pinata)
	if err != nil {
		return nil, nil, err
	}
	minter, err := starknet.New(ctx, cfg.Starknet)
	if err != nil {
		return nil, nil, err
	}
	return up, minter, nil
}

func initLogging(cfg *AppConfig) {
	logx.Init(logx.LoggerOpts{Environment: cfg.Environment})
}
