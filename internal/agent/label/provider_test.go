package label

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/label-minter/server/internal/agent/model"
)

type explorerFunc func(context.Context) (string, error)

func (f explorerFunc) ExplorerURL(ctx context.Context) (string, error) { return f(ctx) }

func TestStatusProvider(t *testing.T) {
	store := newStore(t)
	records := NewRecords(store, model.LabelConfig{}, model.MintConfig{})
	p := NewStatusProvider(records, &fakeMinter{}, "Labelbot")
	ctx := context.Background()

	status := p.LabelStatus(ctx, testKey)
	assert.Contains(t, status, "CURRENT TASK FOR Labelbot")
	assert.Empty(t, p.MintStatus(ctx, testKey))

	_, _, err := records.UpdateLabel(ctx, testKey, completeExtraction(), time.Now())
	require.NoError(t, err)
	pipeline := NewPipeline(records, &fakeUploader{}, &fakeMinter{}, model.MintConfig{})
	_, err = pipeline.Run(ctx, testKey, completeRecord())
	require.NoError(t, err)

	assert.Contains(t, p.LabelStatus(ctx, testKey), "All necessary information has been collected")
	assert.Contains(t, p.MintStatus(ctx, testKey), "https://sepolia.starkscan.co/tx/0xtx1")
}

func TestStatusProvider_Fallbacks(t *testing.T) {
	store := &failingStore{RecordStore: newStore(t)}
	records := NewRecords(store, model.LabelConfig{}, model.MintConfig{})
	ctx := context.Background()

	_, _, err := records.UpdateLabel(ctx, testKey, completeExtraction(), time.Now())
	require.NoError(t, err)
	_, err = NewPipeline(records, &fakeUploader{}, &fakeMinter{}, model.MintConfig{}).Run(ctx, testKey, completeRecord())
	require.NoError(t, err)

	noExplorer := NewStatusProvider(records, explorerFunc(func(context.Context) (string, error) {
		return "", errors.New("node down")
	}), "Labelbot")
	assert.Contains(t, noExplorer.MintStatus(ctx, testKey), "The transaction URL on the Starknet block explorer is: 0xtx1")

	store.fail.Store(true)
	assert.Equal(t, StatusErrorMessage, noExplorer.LabelStatus(ctx, testKey))
	assert.Empty(t, noExplorer.MintStatus(ctx, testKey))
}
