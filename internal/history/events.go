package history

import (
	"context"

	"github.com/dshills/rewind/internal/event"
)

// Topics published by History.
const (
	TopicPushed       event.Topic = "history.pushed"
	TopicUndone       event.Topic = "history.undone"
	TopicRedone       event.Topic = "history.redone"
	TopicBoundary     event.Topic = "history.boundary"
	TopicEvicted      event.Topic = "history.evicted"
	TopicCleared      event.Topic = "history.cleared"
	TopicGroupCleared event.Topic = "history.group.cleared"
)

// eventSource is the Source of every event published by History.
const eventSource = "history"

// Change is the payload of every history event. Cursor and Len are the
// values right after the bookkeeping that caused the event.
type Change struct {
	Direction Direction
	Entry     Info
	Cursor    int
	Len       int
	Removed   int
	GroupTag  string
}

func directionTopic(dir Direction) event.Topic {
	switch dir {
	case DirectionUndo:
		return TopicUndone
	case DirectionRedo:
		return TopicRedone
	default:
		return TopicPushed
	}
}

// publish sends a change event. Publishing failures are logged, never returned:
// observers cannot veto history changes.
func (h *History) publish(ctx context.Context, t event.Topic, c Change) {
	if err := h.publisher.Publish(ctx, event.NewEvent(t, c, eventSource)); err != nil {
		h.log.Warn().Err(err).Str("topic", t.String()).Msg("history event handler failed")
	}
}
