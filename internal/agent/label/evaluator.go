package label

import (
	"context"
	"errors"
	"time"

	"github.com/label-minter/server/internal/agent/model"
	logx "github.com/label-minter/server/pkg/logger"
)

// Evaluator runs the per-message label sequence: gate, extract, merge and,
// on completion, the mint pipeline. Turns for the same key are serialized
// in-process; the store's compare-and-set covers other processes.
type Evaluator struct {
	records   *Records
	extractor Extractor
	pipeline  *Pipeline
	locks     *keyLocks
	now       func() time.Time
}

func NewEvaluator(records *Records, extractor Extractor, pipeline *Pipeline) *Evaluator {
	return &Evaluator{
		records:   records,
		extractor: extractor,
		pipeline:  pipeline,
		locks:     newKeyLocks(),
		now:       time.Now,
	}
}

// Validate reports whether a message for key needs evaluating. Store
// errors keep collection going.
func (e *Evaluator) Validate(ctx context.Context, key model.RecordKey) bool {
	mint, err := e.records.LoadMint(ctx, key)
	if err != nil {
		logx.Error().Err(err).Str("key", key.String()).Msg("mint lookup failed during validate")
		return true
	}
	rec, err := e.records.LoadLabel(ctx, key)
	if err != nil {
		logx.Error().Err(err).Str("key", key.String()).Msg("label validate failed, assuming incomplete")
		return true
	}
	return ShouldRun(rec, mint)
}

// Evaluate processes one participant message. It never fails: recoverable
// problems are logged and reported in Evaluation.Err, pipeline outcomes in
// Evaluation.Mint.
func (e *Evaluator) Evaluate(ctx context.Context, key model.RecordKey, text string) model.Evaluation {
	ev := model.Evaluation{Key: key}
	if !key.Valid() {
		ev.Err = errors.New("invalid record key")
		logx.Warn().Str("key", key.String()).Msg("skipping label evaluation for invalid key")
		return ev
	}

	unlock := e.locks.Lock(key.String())
	defer unlock()

	rec, err := e.records.LoadLabel(ctx, key)
	if err != nil {
		ev.Err = err
		logx.Error().Err(err).Str("key", key.String()).Msg("failed to load label record")
		return ev
	}
	mint, err := e.records.LoadMint(ctx, key)
	if err != nil {
		// treated like a mint that never ran; the claim re-reads the record
		logx.Error().Err(err).Str("key", key.String()).Msg("failed to load mint result")
		ev.Err = err
	}
	ev.Record = rec
	ev.Mint = mint

	if !ShouldRun(rec, mint) {
		ev.Skipped = true
		ev.Completed = rec.IsComplete() || (mint != nil && mint.IsMinted())
		return ev
	}

	// a sent transaction is confirmed before any new label data is taken
	confirming := mint != nil && mint.AwaitingConfirmation()

	if !rec.IsComplete() && !confirming {
		extracted, err := e.extractor.Extract(ctx, text)
		if err != nil {
			// no new information this turn
			logx.Warn().Err(err).Str("key", key.String()).Msg("label extraction failed")
			ev.Err = err
			extracted = model.LabelExtraction{}
		}
		ev.Extracted = !extracted.IsEmpty()

		if ev.Extracted {
			updated, changed, err := e.records.UpdateLabel(ctx, key, extracted, e.now())
			if err != nil {
				logx.Error().Err(err).Str("key", key.String()).Msg("failed to update label record")
				ev.Err = err
				return ev
			}
			ev.Record = updated
			ev.Changed = changed
			if changed {
				logx.Debug().
					Str("key", key.String()).
					Int("missing", len(updated.MissingFields())).
					Msg("label record updated")
			}
		}
	}

	ev.Completed = ev.Record.IsComplete()
	if !ev.Completed && !confirming {
		return ev
	}

	if !confirming {
		logx.Info().Str("key", key.String()).Msg("label data collection completed")
	}
	res, err := e.pipeline.Run(ctx, key, ev.Record)
	if res.Status != "" {
		ev.Mint = &res
	}
	var perr *PipelineError
	switch {
	case err == nil:
	case IsSkip(err):
		logx.Debug().Err(err).Str("key", key.String()).Msg("mint pipeline not started")
	case errors.As(err, &perr):
		ev.Err = err
	default:
		logx.Error().Err(err).Str("key", key.String()).Msg("mint pipeline aborted")
		ev.Err = err
	}
	return ev
}
