package label

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/label-minter/server/internal/agent/model"
	errx "github.com/label-minter/server/internal/core/error"
	logx "github.com/label-minter/server/pkg/logger"
)

const (
	ipfsScheme = "ipfs://"
	// bookkeepingTimeout bounds the writes that record a pipeline outcome
	// after the caller's context is gone.
	bookkeepingTimeout = 5 * time.Second
)

// Error classes stored on a failed MintResult.
const (
	errClassTimeout  = "timeout"
	errClassUpstream = "upstream_error"
	errClassReverted = "reverted"
	errClassCanceled = "canceled"
	errClassInternal = "internal_error"
)

// Pipeline runs the completion action of a label: pin the metadata, mint
// the token, record the transaction.
type Pipeline struct {
	records  *Records
	uploader model.MetadataUploader
	minter   model.Minter
	cfg      model.MintConfig
	now      func() time.Time
}

func NewPipeline(records *Records, uploader model.MetadataUploader, minter model.Minter, cfg model.MintConfig) *Pipeline {
	return &Pipeline{
		records:  records,
		uploader: uploader,
		minter:   minter,
		cfg:      cfg.Normalized(),
		now:      time.Now,
	}
}

// Run mints record for key at most once. Losing the claim returns the
// current MintResult with ErrAlreadyMinted, ErrMintInProgress or
// ErrMintExhausted; a failed step returns a *PipelineError after the
// failure has been recorded. A transaction that was sent is only ever
// confirmed again, never re-sent. Pinned metadata is reused while it
// matches record.
func (p *Pipeline) Run(ctx context.Context, key model.RecordKey, record model.LabelRecord) (model.MintResult, error) {
	claim, current, err := p.records.ClaimMint(ctx, key, record, p.now())
	if err != nil {
		return current, err
	}
	res := claim.result

	if res.AwaitingConfirmation() {
		logx.Info().
			Str("key", key.String()).
			Str("tx_hash", res.TransactionID).
			Msg("resuming confirmation of submitted mint")
		mintCtx, cancel := context.WithTimeout(ctx, p.cfg.ConfirmTimeout)
		defer cancel()
		return p.confirm(ctx, mintCtx, claim, res)
	}

	logx.Info().
		Str("key", key.String()).
		Int("attempt", res.Attempts).
		Msg("label complete, starting mint pipeline")

	digest := contentDigest(record)
	if res.ContentID != "" && res.ContentDigest != digest {
		logx.Info().Str("key", key.String()).Str("content_id", res.ContentID).
			Msg("label changed since the last upload, pinning again")
		res.ContentID, res.ContentURI, res.ContentDigest = "", "", ""
	}

	if res.ContentID == "" {
		upCtx, cancel := context.WithTimeout(ctx, p.cfg.UploadTimeout)
		cid, err := p.uploader.UploadJSON(upCtx, record.Name, record.Description)
		cancel()
		if err != nil {
			return p.fail(ctx, claim, res, model.StageUpload, errx.WrapUpstream("pinata", err))
		}
		res.ContentID = cid
		res.ContentURI = ipfsScheme + cid
		res.ContentDigest = digest
		res.Status = model.MintUploaded
		res.LastUpdated = p.stamp()
		if err := p.record(ctx, claim, res); err != nil {
			logx.Error().Err(err).Str("key", key.String()).Str("content_id", cid).
				Msg("metadata pinned but progress could not be recorded")
			return res, fmt.Errorf("record upload: %w", err)
		}
		logx.Debug().Str("key", key.String()).Str("content_id", cid).Msg("label metadata pinned")
	} else {
		logx.Debug().Str("key", key.String()).Str("content_id", res.ContentID).Msg("reusing pinned metadata")
	}
	if res.ContentURI == "" {
		res.ContentURI = ipfsScheme + res.ContentID
	}

	mintCtx, cancel := context.WithTimeout(ctx, p.cfg.ConfirmTimeout)
	defer cancel()

	txHash, err := p.minter.SubmitMint(mintCtx, record.Recipient, res.ContentURI)
	if err != nil {
		return p.fail(ctx, claim, res, model.StageMint, errx.WrapUpstream("starknet", err))
	}
	res.TransactionID = txHash
	res.Recipient = record.Recipient
	res.LastUpdated = p.stamp()
	if err := p.record(ctx, claim, res); err != nil {
		// the transaction exists either way; keep confirming it
		logx.Error().Err(err).Str("key", key.String()).Str("tx_hash", txHash).
			Msg("mint submitted but the transaction hash could not be recorded")
	}
	logx.Info().Str("key", key.String()).Str("tx_hash", txHash).Msg("mint transaction submitted")

	return p.confirm(ctx, mintCtx, claim, res)
}

// confirm waits for the recorded transaction. A revert frees the label for
// another attempt; any other failure leaves the transaction to be
// confirmed on a later turn.
func (p *Pipeline) confirm(ctx, mintCtx context.Context, claim *MintClaim, res model.MintResult) (model.MintResult, error) {
	err := p.minter.WaitForTransaction(mintCtx, res.TransactionID)
	switch {
	case err == nil:
	case isReverted(err):
		logx.Warn().Err(err).Str("key", claim.key.String()).Str("tx_hash", res.TransactionID).
			Msg("mint transaction reverted")
		res.TransactionID = ""
		res.Recipient = ""
		return p.fail(ctx, claim, res, model.StageConfirm, errx.WrapUpstream("starknet", err))
	default:
		return p.park(ctx, claim, res, errx.WrapUpstream("starknet", err))
	}

	res.Status = model.MintMinted
	res.Stage = ""
	res.Error = ""
	res.Retryable = false
	res.LastUpdated = p.stamp()
	if err := p.record(ctx, claim, res); err != nil {
		logx.Error().Err(err).Str("key", claim.key.String()).Str("tx_hash", res.TransactionID).
			Msg("label minted but the transaction could not be recorded")
		return res, fmt.Errorf("record mint: %w", err)
	}

	bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bookkeepingTimeout)
	defer cancel()
	if err := p.records.RetainLabel(bctx, claim.key, p.cfg.ResultTTL); err != nil {
		logx.Warn().Err(err).Str("key", claim.key.String()).Msg("could not extend label record expiry")
	}

	logx.Info().
		Str("key", claim.key.String()).
		Str("content_uri", res.ContentURI).
		Str("tx_hash", res.TransactionID).
		Msg("label minted")
	return res, nil
}

// park releases the claim on a transaction whose outcome is unknown. The
// next turn confirms it instead of minting again.
func (p *Pipeline) park(ctx context.Context, claim *MintClaim, res model.MintResult, cause error) (model.MintResult, error) {
	res.Status = model.MintSubmitted
	res.Stage = model.StageConfirm
	res.Error = errorClass(cause)
	res.Retryable = true
	res.LastUpdated = p.stamp()

	logx.Warn().
		Err(cause).
		Str("key", claim.key.String()).
		Str("tx_hash", res.TransactionID).
		Msg("mint transaction not confirmed yet")

	perr := &PipelineError{Stage: model.StageConfirm, Retryable: true, Err: cause}
	if err := p.record(ctx, claim, res); err != nil {
		return res, errors.Join(perr, fmt.Errorf("record submitted mint: %w", err))
	}
	return res, perr
}

func (p *Pipeline) fail(ctx context.Context, claim *MintClaim, res model.MintResult, stage model.MintStage, cause error) (model.MintResult, error) {
	res.Status = model.MintFailed
	res.Stage = stage
	res.Error = errorClass(cause)
	res.Retryable = res.Attempts < p.cfg.MaxAttempts
	res.LastUpdated = p.stamp()

	logx.Error().
		Err(cause).
		Str("key", claim.key.String()).
		Str("stage", string(stage)).
		Int("attempt", res.Attempts).
		Bool("retryable", res.Retryable).
		Msg("mint pipeline step failed")

	perr := &PipelineError{Stage: stage, Retryable: res.Retryable, Err: cause}
	if err := p.record(ctx, claim, res); err != nil {
		return res, errors.Join(perr, fmt.Errorf("record failure: %w", err))
	}
	return res, perr
}

func (p *Pipeline) stamp() *time.Time {
	ts := p.now().UTC()
	return &ts
}

// record persists res under the claim. It outlives cancellation of ctx so
// outcomes are kept even when the turn itself timed out.
func (p *Pipeline) record(ctx context.Context, claim *MintClaim, res model.MintResult) error {
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), bookkeepingTimeout)
	defer cancel()
	return p.records.Advance(c, claim, res)
}

// contentDigest identifies the metadata pinned for record.
func contentDigest(record model.LabelRecord) string {
	sum := sha3.Sum256([]byte(record.Name + "\x00" + record.Description))
	return hex.EncodeToString(sum[:])
}

func isReverted(err error) bool {
	var r interface{ Reverted() bool }
	return errors.As(err, &r) && r.Reverted()
}

// errorClass reduces err to a short label that is safe to store next to
// participant data.
func errorClass(err error) string {
	switch {
	case isReverted(err):
		return errClassReverted
	case errors.Is(err, context.DeadlineExceeded):
		return errClassTimeout
	case errors.Is(err, context.Canceled):
		return errClassCanceled
	}
	switch errx.StatusOf(err) {
	case http.StatusGatewayTimeout:
		return errClassTimeout
	case http.StatusBadGateway:
		return errClassUpstream
	default:
		return errClassInternal
	}
}
