package label

import (
	"context"

	"github.com/label-minter/server/internal/agent/model"
	logx "github.com/label-minter/server/pkg/logger"
)

// ExplorerSource resolves the block explorer transaction URL prefix.
type ExplorerSource interface {
	ExplorerURL(ctx context.Context) (string, error)
}

// StatusProvider reads the stored state of a participant and narrates it
// for the response model.
type StatusProvider struct {
	records   *Records
	explorer  ExplorerSource
	agentName string
}

func NewStatusProvider(records *Records, explorer ExplorerSource, agentName string) *StatusProvider {
	return &StatusProvider{records: records, explorer: explorer, agentName: agentName}
}

// LabelStatus renders the label status, or the fallback text when the
// record cannot be read. Collection guidance is left out once the mint
// closed the gate.
func (p *StatusProvider) LabelStatus(ctx context.Context, key model.RecordKey) string {
	rec, err := p.records.LoadLabel(ctx, key)
	if err != nil {
		logx.Error().Err(err).Str("key", key.String()).Msg("label status unavailable")
		return StatusErrorMessage
	}
	if !rec.IsComplete() {
		res, err := p.records.LoadMint(ctx, key)
		if err != nil {
			logx.Warn().Err(err).Str("key", key.String()).Msg("mint state unavailable for label status")
		} else if res != nil && (res.IsMinted() || res.Exhausted() || res.AwaitingConfirmation()) {
			return RenderClosedStatus(rec)
		}
	}
	return RenderStatus(p.agentName, rec)
}

// MintStatus renders the mint outcome, or "" when there is nothing to say.
func (p *StatusProvider) MintStatus(ctx context.Context, key model.RecordKey) string {
	res, err := p.records.LoadMint(ctx, key)
	if err != nil {
		logx.Error().Err(err).Str("key", key.String()).Msg("mint status unavailable")
		return ""
	}
	if res == nil {
		return ""
	}

	var explorerURL string
	if res.IsMinted() && p.explorer != nil {
		explorerURL, err = p.explorer.ExplorerURL(ctx)
		if err != nil {
			logx.Warn().Err(err).Str("key", key.String()).Msg("explorer url unavailable")
		}
	}
	return RenderMintStatus(res, explorerURL)
}

// AgentName is the name the narration addresses.
func (p *StatusProvider) AgentName() string {
	return p.agentName
}
