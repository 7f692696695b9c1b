package label

import (
	"errors"
	"fmt"

	"github.com/label-minter/server/internal/agent/model"
)

var (
	// ErrIncomplete is returned when the pipeline is asked to run on a label
	// that is missing fields.
	ErrIncomplete = errors.New("label data is incomplete")
	// ErrAlreadyMinted means the participant's label was minted before.
	ErrAlreadyMinted = errors.New("label already minted")
	// ErrMintInProgress means another turn holds the mint claim.
	ErrMintInProgress = errors.New("label mint already in progress")
	// ErrMintExhausted means the pipeline failed too many times to retry.
	ErrMintExhausted = errors.New("label mint attempts exhausted")
	// ErrClaimLost means the mint record changed under a running pipeline.
	ErrClaimLost = errors.New("label mint claim lost")
	// ErrConflict means the record kept changing during compare-and-set retries.
	ErrConflict = errors.New("label record update conflict")
)

// PipelineError is a failed completion pipeline step. The failure is already
// recorded on the MintResult when this is returned.
type PipelineError struct {
	Stage     model.MintStage
	Retryable bool
	Err       error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("mint pipeline %s step failed (retryable=%t): %v", e.Stage, e.Retryable, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// IsSkip reports whether err only means the pipeline had nothing to do.
func IsSkip(err error) bool {
	return errors.Is(err, ErrAlreadyMinted) || errors.Is(err, ErrMintInProgress) || errors.Is(err, ErrMintExhausted)
}
