package label

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/label-minter/server/internal/agent/model"
)

func TestIsComplete(t *testing.T) {
	ts := time.Now()
	tests := []struct {
		name   string
		record model.LabelRecord
		want   bool
	}{
		{"empty", model.LabelRecord{}, false},
		{"name only", model.LabelRecord{Name: "X"}, false},
		{"missing recipient", model.LabelRecord{Name: "X", Description: "Y"}, false},
		{"blank recipient", model.LabelRecord{Name: "X", Description: "Y", Recipient: "  "}, false},
		{"complete", model.LabelRecord{Name: "X", Description: "Y", Recipient: "Z"}, true},
		{"complete with timestamp", model.LabelRecord{Name: "X", Description: "Y", Recipient: "Z", LastUpdated: &ts}, true},
		{"timestamp alone", model.LabelRecord{LastUpdated: &ts}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsComplete(tt.record))
		})
	}
}

func TestShouldRun(t *testing.T) {
	complete := completeRecord()
	minted := &model.MintResult{Status: model.MintMinted, TransactionID: "0x1"}
	exhausted := &model.MintResult{Status: model.MintFailed, Retryable: false}
	submitted := &model.MintResult{Status: model.MintSubmitted, TransactionID: "0x1"}

	tests := []struct {
		name   string
		record model.LabelRecord
		mint   *model.MintResult
		want   bool
	}{
		{"collecting", model.LabelRecord{Name: "X"}, nil, true},
		{"complete but never claimed", complete, nil, true},
		{"minted", complete, minted, false},
		{"minted after the label expired", model.LabelRecord{}, minted, false},
		{"claim running", complete, &model.MintResult{Status: model.MintPending}, true},
		{"retryable failure", complete, &model.MintResult{Status: model.MintFailed, Retryable: true}, true},
		{"retryable failure after the label expired", model.LabelRecord{}, &model.MintResult{Status: model.MintFailed, Retryable: true}, true},
		{"exhausted", complete, exhausted, false},
		{"exhausted after the label expired", model.LabelRecord{}, exhausted, false},
		{"submitted", complete, submitted, true},
		{"submitted after the label expired", model.LabelRecord{}, submitted, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldRun(tt.record, tt.mint))
		})
	}
}
