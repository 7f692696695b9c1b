package label

import (
	"strings"
	"time"

	"github.com/label-minter/server/internal/agent/model"
)

// Merge fills the blank fields of current with the values found in
// extracted. A field that already holds a value is never overwritten and a
// field missing from extracted is never cleared. When anything changed,
// LastUpdated is set to now.
func Merge(current model.LabelRecord, extracted model.LabelExtraction, now time.Time) (model.LabelRecord, bool) {
	changed := false
	for _, f := range model.RequiredFields {
		v := strings.TrimSpace(extracted.Value(f))
		if v == "" || current.Has(f) {
			continue
		}
		current = current.With(f, v)
		changed = true
	}
	if changed {
		ts := now.UTC()
		current.LastUpdated = &ts
	}
	return current, changed
}
