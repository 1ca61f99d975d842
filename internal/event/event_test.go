package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	ev := NewEvent[int]("history.pushed", 42, "history")

	assert.Equal(t, Topic("history.pushed"), ev.EventTopic())
	assert.Equal(t, 42, ev.Payload)
	assert.Equal(t, "history", ev.EventMetadata().Source)
	assert.NotEmpty(t, ev.Metadata.ID)
	assert.False(t, ev.Metadata.Timestamp.IsZero())

	other := NewEvent[int]("history.pushed", 42, "history")
	assert.NotEqual(t, ev.Metadata.ID, other.Metadata.ID)
}

func TestPayloadOf(t *testing.T) {
	var ev any = NewEvent("history.undone", "payload", "test")

	got, ok := PayloadOf[string](ev)
	require.True(t, ok)
	assert.Equal(t, "payload", got)

	_, ok = PayloadOf[int](ev)
	assert.False(t, ok)
}
