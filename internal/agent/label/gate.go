package label

import "github.com/label-minter/server/internal/agent/model"

// IsComplete reports whether name, description and recipient are all set.
func IsComplete(r model.LabelRecord) bool {
	return r.IsComplete()
}

// ShouldRun decides whether an inbound message needs evaluating. A minted
// or exhausted mint closes the gate whatever the label record holds, since
// the label record may expire first. A sent transaction keeps it open until
// confirmed. Otherwise the label must still be incomplete, or complete with
// a mint that never ran, may be retried, or holds a claim that may have
// gone stale. mint is nil when the pipeline never ran.
func ShouldRun(r model.LabelRecord, mint *model.MintResult) bool {
	if mint != nil {
		switch {
		case mint.IsMinted(), mint.Exhausted():
			return false
		case mint.AwaitingConfirmation():
			return true
		}
	}
	if !r.IsComplete() {
		return true
	}
	if mint == nil {
		// complete but never claimed, e.g. the process died between merge and claim
		return true
	}
	return mint.CanRetry() || mint.InFlight()
}
