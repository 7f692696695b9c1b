package model

import (
	"fmt"
	"time"
)

// ================ Config ================
type ConversationConfig struct {
	TTL      time.Duration `envconfig:"CONVERSATION_TTL" default:"24h"`
	MaxTurns int           `envconfig:"CONVERSATION_MAX_TURNS" default:"10"`
}

type ExtractionModelConfig struct {
	Model       string  `envconfig:"EXTRACTION_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"EXTRACTION_MAX_TOKENS" default:"1024"`
	Temperature float32 `envconfig:"EXTRACTION_TEMPERATURE" default:"0"`
}

type ResponseModelConfig struct {
	Model       string  `envconfig:"RESPONSE_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"RESPONSE_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"RESPONSE_TEMPERATURE" default:"0.6"`
}

type ResponsePromptConfig struct {
	CharacterBio string `envconfig:"PROMPT_CHARACTER_BIO" default:"a friendly assistant that helps people create NFT labels on Starknet"`
}

// LabelConfig tunes label collection. TTL is the expiry window of a
// LabelRecord after each mutation.
type LabelConfig struct {
	TTL        time.Duration `envconfig:"LABEL_TTL" default:"10m"`
	CASRetries int           `envconfig:"LABEL_CAS_RETRIES" default:"5"`
}

// MintConfig bounds the completion pipeline. ClaimLease must outlast one
// full run (upload plus confirmation) or a live claim could be taken over.
type MintConfig struct {
	UploadTimeout  time.Duration `envconfig:"MINT_UPLOAD_TIMEOUT" default:"30s"`
	ConfirmTimeout time.Duration `envconfig:"MINT_CONFIRM_TIMEOUT" default:"2m"`
	ClaimLease     time.Duration `envconfig:"MINT_CLAIM_LEASE" default:"5m"`
	MaxAttempts    int           `envconfig:"MINT_MAX_ATTEMPTS" default:"3"`
	ResultTTL      time.Duration `envconfig:"MINT_RESULT_TTL" default:"168h"`
}

const (
	DefaultLabelTTL       = 10 * time.Minute
	DefaultCASRetries     = 5
	DefaultUploadTimeout  = 30 * time.Second
	DefaultConfirmTimeout = 2 * time.Minute
	DefaultClaimLease     = 5 * time.Minute
	DefaultMaxAttempts    = 3
	DefaultResultTTL      = 7 * 24 * time.Hour
)

// Normalized fills zero values with defaults.
func (c LabelConfig) Normalized() LabelConfig {
	if c.TTL <= 0 {
		c.TTL = DefaultLabelTTL
	}
	if c.CASRetries <= 0 {
		c.CASRetries = DefaultCASRetries
	}
	return c
}

// claimMargin covers the bookkeeping writes that follow a pipeline step.
const claimMargin = 30 * time.Second

// MinClaimLease is the shortest lease that outlasts one pipeline run.
func (c MintConfig) MinClaimLease() time.Duration {
	return c.UploadTimeout + c.ConfirmTimeout + claimMargin
}

// Validate rejects a lease that a single pipeline run could outlive.
func (c MintConfig) Validate() error {
	n := c.Normalized()
	if c.ClaimLease > 0 && c.ClaimLease < n.MinClaimLease() {
		return fmt.Errorf("MINT_CLAIM_LEASE (%s) must be at least MINT_UPLOAD_TIMEOUT + MINT_CONFIRM_TIMEOUT + %s (%s)",
			c.ClaimLease, claimMargin, n.MinClaimLease())
	}
	return nil
}

// Normalized fills zero values with defaults and raises ClaimLease to
// MinClaimLease.
func (c MintConfig) Normalized() MintConfig {
	if c.UploadTimeout <= 0 {
		c.UploadTimeout = DefaultUploadTimeout
	}
	if c.ConfirmTimeout <= 0 {
		c.ConfirmTimeout = DefaultConfirmTimeout
	}
	if c.ClaimLease <= 0 {
		c.ClaimLease = DefaultClaimLease
	}
	if floor := c.MinClaimLease(); c.ClaimLease < floor {
		c.ClaimLease = floor
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.ResultTTL <= 0 {
		c.ResultTTL = DefaultResultTTL
	}
	return c
}
