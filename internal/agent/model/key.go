package model

import "fmt"

// RecordKey addresses the label data of one participant talking to one agent.
type RecordKey struct {
	AgentID       string
	ParticipantID string
}

// Valid reports whether both parts of the key are present.
func (k RecordKey) Valid() bool {
	return k.AgentID != "" && k.ParticipantID != ""
}

// LabelKey is the store key of the LabelRecord.
func (k RecordKey) LabelKey() string {
	return fmt.Sprintf("%s/%s/data", k.AgentID, k.ParticipantID)
}

// MintKey is the store key of the MintResult.
func (k RecordKey) MintKey() string {
	return fmt.Sprintf("%s/%s/mint", k.AgentID, k.ParticipantID)
}

func (k RecordKey) String() string {
	return k.AgentID + "/" + k.ParticipantID
}
