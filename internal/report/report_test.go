package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/dshills/rewind/internal/history"
)

func noop(context.Context) error { return nil }

func sampleHistory(t *testing.T) *history.History {
	t.Helper()
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	tick := 0
	h := history.New(
		history.WithCapacity(50),
		history.WithClock(func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Second)
		}),
	)

	for _, a := range []history.Action{
		{Description: "insert hello", GroupTag: "typing", Forward: noop, Backward: noop},
		{Description: "insert world", GroupTag: "typing", Forward: noop, Backward: noop},
		{Description: "delete line", Forward: noop, Backward: noop},
	} {
		require.NoError(t, h.Push(ctx, a))
	}
	_, err := h.Undo(ctx)
	require.NoError(t, err)
	return h
}

func render(t *testing.T, s Snapshot, opts Options) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, s, opts))
	return buf.Bytes()
}

func TestRenderGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	t.Run("empty", func(t *testing.T) {
		s := Snapshot{Cursor: -1, Capacity: history.DefaultCapacity}
		g.Assert(t, "empty", render(t, s, Options{}))
	})

	t.Run("mixed", func(t *testing.T) {
		g.Assert(t, "mixed", render(t, Take(sampleHistory(t)), Options{}))
	})

	t.Run("timestamps", func(t *testing.T) {
		g.Assert(t, "timestamps", render(t, Take(sampleHistory(t)), Options{Timestamps: true}))
	})

	t.Run("all undone", func(t *testing.T) {
		h := sampleHistory(t)
		for h.CanUndo() {
			_, err := h.Undo(context.Background())
			require.NoError(t, err)
		}
		g.Assert(t, "all_undone", render(t, Take(h), Options{}))
	})
}
