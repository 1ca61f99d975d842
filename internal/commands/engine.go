package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dshills/rewind/internal/bell"
	"github.com/dshills/rewind/internal/event"
	"github.com/dshills/rewind/internal/history"
	"github.com/dshills/rewind/internal/logging"
)

// engine is a history wired to an event bus and the configured logger.
type engine struct {
	hist *history.History
	bus  *event.Bus
	log  zerolog.Logger
}

// newEngine builds a history from the loaded configuration.
func newEngine(flags *Flags, b bell.Bell) (*engine, error) {
	log := flags.Logger.Logger
	bus := event.NewBus(logging.Component(log, "bus"))

	if _, err := bus.Subscribe("history.**", logChanges(logging.Component(log, "events")), event.WithPriority(event.PriorityLow)); err != nil {
		return nil, fmt.Errorf("subscribe event log: %w", err)
	}

	cfg := flags.Config.History
	h := history.New(
		history.WithCapacity(cfg.Capacity),
		history.WithWaitTimeout(cfg.WaitTimeout.Std()),
		history.WithLogger(logging.Component(log, "history")),
		history.WithBell(b),
		history.WithPublisher(bus),
	)
	return &engine{hist: h, bus: bus, log: log}, nil
}

// logChanges records every history event at debug level.
func logChanges(log zerolog.Logger) event.HandlerFunc {
	return func(_ context.Context, ev any) error {
		change, ok := event.PayloadOf[history.Change](ev)
		if !ok {
			return nil
		}
		e := log.Debug()
		if tp, ok := ev.(event.TopicProvider); ok {
			e = e.Str("topic", tp.EventTopic().String())
		}
		e.Int("cursor", change.Cursor).
			Int("len", change.Len).
			Int("removed", change.Removed).
			Str("description", change.Entry.Description).
			Msg("history changed")
		return nil
	}
}
