package label

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/label-minter/server/internal/agent/model"
)

var mergeNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func TestMerge_FillsEmptyRecord(t *testing.T) {
	got, changed := Merge(model.LabelRecord{}, completeExtraction(), mergeNow)

	assert.True(t, changed)
	assert.Equal(t, porscheName, got.Name)
	assert.Equal(t, porscheDescription, got.Description)
	assert.Equal(t, porscheRecipient, got.Recipient)
	require.NotNil(t, got.LastUpdated)
	assert.Equal(t, mergeNow, *got.LastUpdated)
}

func TestMerge_FirstWriteWins(t *testing.T) {
	current := model.LabelRecord{Name: "X", Description: "Y", Recipient: "Z"}

	got, changed := Merge(current, model.LabelExtraction{Name: "Other"}, mergeNow)

	assert.False(t, changed)
	assert.Equal(t, current, got)
}

func TestMerge_FillsOnlyMissingFields(t *testing.T) {
	current := model.LabelRecord{Name: "X"}

	got, changed := Merge(current, model.LabelExtraction{Name: "Other", Recipient: " 0xabc "}, mergeNow)

	assert.True(t, changed)
	assert.Equal(t, "X", got.Name)
	assert.Empty(t, got.Description)
	assert.Equal(t, "0xabc", got.Recipient)
}

func TestMerge_EmptyExtractionIsIdentity(t *testing.T) {
	ts := mergeNow.Add(-time.Hour)
	current := model.LabelRecord{Name: "X", LastUpdated: &ts}

	got, changed := Merge(current, model.LabelExtraction{}, mergeNow)

	assert.False(t, changed)
	assert.Equal(t, current, got)

	got, changed = Merge(current, model.LabelExtraction{Description: "   "}, mergeNow)
	assert.False(t, changed)
	assert.Equal(t, current, got)
}

func TestMerge_NeverClearsFilledFields(t *testing.T) {
	values := []string{"", " ", "a", "b", "0x1"}
	pick := func(r *rand.Rand) string { return values[r.Intn(len(values))] }
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		current := model.LabelRecord{Name: pick(r), Description: pick(r), Recipient: pick(r)}
		extracted := model.LabelExtraction{Name: pick(r), Description: pick(r), Recipient: pick(r)}

		got, _ := Merge(current, extracted, mergeNow)
		for _, f := range model.RequiredFields {
			if current.Has(f) {
				assert.Equal(t, current.Value(f), got.Value(f), "field %s overwritten", f)
			}
		}
	}
}
