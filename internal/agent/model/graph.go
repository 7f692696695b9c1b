package model

// AppState stores per-invocation state for the Eino Graph.
// Concurrency model:
//   - Registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers or
//     compose.ProcessState, which serialize access.
//   - Persistence goes through repositories, never through this struct.
type AppState struct {
	RunID          string
	Key            RecordKey
	ConversationID string
	Query          string
	Evaluation     *Evaluation // set by the label evaluator, read by the assembler
}

// QueryInput is one inbound participant message.
type QueryInput struct {
	AgentID        string `json:"agent_id"`
	ParticipantID  string `json:"participant_id"`
	ConversationID string `json:"conversation_id"`
	Query          string `json:"query"`
}

// Key returns the record key addressed by the message.
func (q QueryInput) Key() RecordKey {
	return RecordKey{AgentID: q.AgentID, ParticipantID: q.ParticipantID}
}

// Evaluation is the outcome of running the label evaluator on one message.
type Evaluation struct {
	Key       RecordKey
	Skipped   bool        // the gate decided no extraction was needed
	Extracted bool        // the extractor returned at least one field
	Changed   bool        // the merge set at least one field
	Record    LabelRecord // record after merging
	Completed bool        // record is complete after this turn
	Mint      *MintResult // mint state after this turn, nil when never claimed
	Err       error       // recoverable error, logged and never shown to the participant
}

// LabelTurn is what the label evaluator needs from one inbound message.
type LabelTurn struct {
	Key  RecordKey
	Text string // latest participant message
}
