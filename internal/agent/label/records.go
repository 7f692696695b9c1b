package label

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/label-minter/server/internal/agent/model"
	logx "github.com/label-minter/server/pkg/logger"
)

// Records gives typed access to the LabelRecord and MintResult entries of
// a RecordStore. Every write goes through CompareAndSet.
type Records struct {
	store model.RecordStore
	cfg   model.LabelConfig
	mint  model.MintConfig
}

func NewRecords(store model.RecordStore, labelCfg model.LabelConfig, mintCfg model.MintConfig) *Records {
	return &Records{store: store, cfg: labelCfg.Normalized(), mint: mintCfg.Normalized()}
}

// LoadLabel returns the stored record, or an empty one on a miss.
func (r *Records) LoadLabel(ctx context.Context, key model.RecordKey) (model.LabelRecord, error) {
	rec, _, err := r.loadLabel(ctx, key)
	return rec, err
}

func (r *Records) loadLabel(ctx context.Context, key model.RecordKey) (model.LabelRecord, []byte, error) {
	raw, found, err := r.store.Get(ctx, key.LabelKey())
	if err != nil {
		return model.LabelRecord{}, nil, fmt.Errorf("load label record: %w", err)
	}
	if !found {
		return model.LabelRecord{}, nil, nil
	}
	var rec model.LabelRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		// a corrupt entry is replaced by the next successful merge
		logx.Warn().Err(err).Str("key", key.LabelKey()).Msg("discarding undecodable label record")
		return model.LabelRecord{}, raw, nil
	}
	return rec, raw, nil
}

// UpdateLabel merges extracted into the stored record and persists the
// result with the label TTL. Nothing is written when the merge changes
// nothing. Concurrent writers are resolved by reloading and merging again.
func (r *Records) UpdateLabel(ctx context.Context, key model.RecordKey, extracted model.LabelExtraction, now time.Time) (model.LabelRecord, bool, error) {
	for attempt := 0; attempt < r.cfg.CASRetries; attempt++ {
		current, raw, err := r.loadLabel(ctx, key)
		if err != nil {
			return model.LabelRecord{}, false, err
		}

		next, changed := Merge(current, extracted, now)
		if !changed {
			return current, false, nil
		}

		b, err := json.Marshal(next)
		if err != nil {
			return model.LabelRecord{}, false, fmt.Errorf("marshal label record: %w", err)
		}
		ok, err := r.store.CompareAndSet(ctx, key.LabelKey(), raw, b, r.cfg.TTL)
		if err != nil {
			return model.LabelRecord{}, false, fmt.Errorf("store label record: %w", err)
		}
		if ok {
			return next, true, nil
		}
		logx.Debug().Str("key", key.LabelKey()).Int("attempt", attempt+1).Msg("label record changed concurrently, retrying merge")
	}
	return model.LabelRecord{}, false, ErrConflict
}

// LoadMint returns the stored mint result, or nil when the pipeline never ran.
func (r *Records) LoadMint(ctx context.Context, key model.RecordKey) (*model.MintResult, error) {
	res, _, err := r.loadMint(ctx, key)
	return res, err
}

func (r *Records) loadMint(ctx context.Context, key model.RecordKey) (*model.MintResult, []byte, error) {
	raw, found, err := r.store.Get(ctx, key.MintKey())
	if err != nil {
		return nil, nil, fmt.Errorf("load mint result: %w", err)
	}
	if !found {
		return nil, nil, nil
	}
	var res model.MintResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, nil, fmt.Errorf("decode mint result: %w", err)
	}
	return &res, raw, nil
}

// MintClaim is the caller's handle on a claimed mint record.
type MintClaim struct {
	key    model.RecordKey
	result model.MintResult
	raw    []byte
}

// ClaimMint takes the one-shot right to run the pipeline for key. It
// succeeds when no mint record exists, when the last attempt failed and may
// be retried, when a submitted transaction still needs confirming, or when
// an earlier claim outlived its lease. Otherwise it returns the current
// result with a skip error. record must be complete unless a submitted
// transaction is being confirmed.
func (r *Records) ClaimMint(ctx context.Context, key model.RecordKey, record model.LabelRecord, now time.Time) (*MintClaim, model.MintResult, error) {
	current, raw, err := r.loadMint(ctx, key)
	if err != nil {
		return nil, model.MintResult{}, err
	}

	var next model.MintResult
	switch {
	case current == nil:
		if !record.IsComplete() {
			return nil, model.MintResult{}, ErrIncomplete
		}
		next = model.MintResult{}
	case current.IsMinted():
		return nil, *current, ErrAlreadyMinted
	case current.InFlight() && !r.claimExpired(current, now):
		return nil, *current, ErrMintInProgress
	case current.Exhausted():
		return nil, *current, ErrMintExhausted
	case !current.AwaitingConfirmation() && !record.IsComplete():
		return nil, *current, ErrIncomplete
	default:
		next = *current
		if current.InFlight() {
			logx.Warn().Str("key", key.MintKey()).Msg("reclaiming stale mint claim")
		}
	}

	ts := now.UTC()
	next.Status = model.MintPending
	if !next.AwaitingConfirmation() {
		// confirming a sent transaction is not a new attempt
		next.Attempts++
	}
	next.Stage = ""
	next.Error = ""
	next.Retryable = false
	next.ClaimedAt = &ts
	next.LastUpdated = &ts

	b, err := json.Marshal(next)
	if err != nil {
		return nil, model.MintResult{}, fmt.Errorf("marshal mint result: %w", err)
	}
	ok, err := r.store.CompareAndSet(ctx, key.MintKey(), raw, b, r.mint.ResultTTL)
	if err != nil {
		return nil, model.MintResult{}, fmt.Errorf("claim mint: %w", err)
	}
	if !ok {
		// another turn claimed first; report what it wrote
		winner, _, err := r.loadMint(ctx, key)
		if err != nil {
			return nil, model.MintResult{}, err
		}
		if winner == nil {
			return nil, model.MintResult{}, ErrMintInProgress
		}
		if winner.IsMinted() {
			return nil, *winner, ErrAlreadyMinted
		}
		return nil, *winner, ErrMintInProgress
	}
	return &MintClaim{key: key, result: next, raw: b}, next, nil
}

// Advance persists the next state of a claimed mint record. It fails with
// ErrClaimLost when the record no longer holds what this claim last wrote.
func (r *Records) Advance(ctx context.Context, c *MintClaim, next model.MintResult) error {
	b, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal mint result: %w", err)
	}
	ok, err := r.store.CompareAndSet(ctx, c.key.MintKey(), c.raw, b, r.mint.ResultTTL)
	if err != nil {
		return fmt.Errorf("store mint result: %w", err)
	}
	if !ok {
		return ErrClaimLost
	}
	c.result = next
	c.raw = b
	return nil
}

// RetainLabel keeps the stored label record for ttl from now, so it stays
// readable as long as the mint result that was made from it.
func (r *Records) RetainLabel(ctx context.Context, key model.RecordKey, ttl time.Duration) error {
	_, raw, err := r.loadLabel(ctx, key)
	if err != nil || raw == nil {
		return err
	}
	if _, err := r.store.CompareAndSet(ctx, key.LabelKey(), raw, raw, ttl); err != nil {
		return fmt.Errorf("retain label record: %w", err)
	}
	return nil
}

func (r *Records) claimExpired(m *model.MintResult, now time.Time) bool {
	if m.ClaimedAt == nil {
		return true
	}
	return now.Sub(*m.ClaimedAt) > r.mint.ClaimLease
}
