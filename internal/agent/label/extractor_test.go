package label

import (
	"context"
	"errors"
	"strings"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedChatModel struct {
	reply string
	err   error
	seen  [][]*schema.Message
}

func (m *scriptedChatModel) Generate(_ context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	m.seen = append(m.seen, input)
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *scriptedChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func TestModelExtractor_Porsche(t *testing.T) {
	chat := &scriptedChatModel{reply: "```json\n{\"name\": \"Porsche 911 Carrera\", \"description\": \"" + porscheDescription + "\", \"recipient\": \"" + porscheRecipient + "\"}\n```"}
	x := NewModelExtractor(chat)

	got, err := x.Extract(context.Background(), "I want to create a label called Porsche 911 Carrera")
	require.NoError(t, err)
	assert.Equal(t, completeExtraction(), got)

	require.Len(t, chat.seen, 1)
	require.Len(t, chat.seen[0], 2)
	assert.Equal(t, schema.System, chat.seen[0][0].Role)
	assert.Equal(t, schema.User, chat.seen[0][1].Role)
	assert.True(t, strings.Contains(chat.seen[0][1].Content, "Porsche 911 Carrera"))
}

func TestModelExtractor_EmptyObjectMeansNothing(t *testing.T) {
	x := NewModelExtractor(&scriptedChatModel{reply: "{}"})

	got, err := x.Extract(context.Background(), "I plan to buy a Porsche next year")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestModelExtractor_BlankMessageSkipsModel(t *testing.T) {
	chat := &scriptedChatModel{reply: `{"name":"x"}`}
	x := NewModelExtractor(chat)

	got, err := x.Extract(context.Background(), "  \n ")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
	assert.Empty(t, chat.seen)
}

func TestModelExtractor_Errors(t *testing.T) {
	boom := errors.New("quota exceeded")
	_, err := NewModelExtractor(&scriptedChatModel{err: boom}).Extract(context.Background(), "hello")
	assert.ErrorIs(t, err, boom)

	_, err = NewModelExtractor(&scriptedChatModel{reply: "I cannot help with that"}).Extract(context.Background(), "hello")
	assert.Error(t, err)
}

func TestKeyLocks_SerializesPerKey(t *testing.T) {
	locks := newKeyLocks()

	unlockA := locks.Lock("a")
	unlockB := locks.Lock("b")
	assert.Equal(t, 2, locks.size())

	acquired := make(chan struct{})
	go func() {
		unlock := locks.Lock("a")
		close(acquired)
		unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired a locked key")
	default:
	}

	unlockA()
	<-acquired
	unlockB()
	assert.Zero(t, locks.size())
}
