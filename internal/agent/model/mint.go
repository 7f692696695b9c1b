package model

import "time"

// MintStatus is the step-level progress of the completion pipeline for one
// participant.
type MintStatus string

const (
	MintPending  MintStatus = "pending"
	MintUploaded MintStatus = "uploaded"
	// MintSubmitted means the mint transaction was sent but its outcome is
	// not known yet. It is never re-sent, only confirmed.
	MintSubmitted MintStatus = "submitted"
	MintMinted   MintStatus = "minted"
	MintFailed   MintStatus = "failed"
)

// MintStage identifies the pipeline step that produced a failure.
type MintStage string

const (
	StageUpload  MintStage = "upload"
	StageMint    MintStage = "mint"
	StageConfirm MintStage = "confirm"
)

// MintResult records the one-time completion action. It is stored under its
// own key, never on top of the LabelRecord.
type MintResult struct {
	Status        MintStatus `json:"status"`
	ContentID     string     `json:"content_id,omitempty"`
	ContentDigest string     `json:"content_digest,omitempty"` // digest of the pinned name and description
	ContentURI    string     `json:"content_uri,omitempty"`
	TransactionID string     `json:"transaction_id,omitempty"`
	Attempts      int        `json:"attempts"`
	Stage         MintStage  `json:"stage,omitempty"`
	Recipient     string     `json:"recipient,omitempty"`
	Error         string     `json:"error,omitempty"` // error class, details stay in the logs
	Retryable     bool       `json:"retryable,omitempty"`
	ClaimedAt     *time.Time `json:"claimed_at,omitempty"`
	LastUpdated   *time.Time `json:"last_updated,omitempty"`
}

// IsMinted reports whether the token was minted and confirmed.
func (m MintResult) IsMinted() bool {
	return m.Status == MintMinted && m.TransactionID != ""
}

// InFlight reports whether a claim is currently running the pipeline.
func (m MintResult) InFlight() bool {
	return m.Status == MintPending || m.Status == MintUploaded
}

// AwaitingConfirmation reports whether a transaction was sent and has to
// be confirmed before anything else happens for this participant.
func (m MintResult) AwaitingConfirmation() bool {
	return m.TransactionID != "" && !m.IsMinted()
}

// Exhausted reports whether the pipeline failed for good.
func (m MintResult) Exhausted() bool {
	return m.Status == MintFailed && !m.Retryable
}

// CanRetry reports whether a failed pipeline may be attempted again.
func (m MintResult) CanRetry() bool {
	return (m.Status == MintFailed && m.Retryable) || m.Status == MintSubmitted
}
