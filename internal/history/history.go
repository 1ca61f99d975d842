package history

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dshills/rewind/internal/bell"
	"github.com/dshills/rewind/internal/event"
)

// Result is the outcome of Undo and Redo. It is only meaningful when the
// accompanying error is nil.
type Result int

const (
	// Applied means the history moved and the effect ran.
	Applied Result = iota
	// Boundary means there was nothing to undo or redo; no effect ran.
	Boundary
)

// String returns "applied" or "boundary".
func (r Result) String() string {
	if r == Boundary {
		return "boundary"
	}
	return "applied"
}

// History owns a linear timeline of actions and a cursor into it.
//
// Bookkeeping (entries, cursor) is guarded by mu and always completes before
// an operation's effect runs. Effects run one at a time through queue, in the
// order their operations were invoked.
type History struct {
	mu sync.Mutex

	entries []*entry
	cursor  int // index of the last applied entry, -1 when none

	queue effectQueue

	// Configuration
	capacity    int
	waitTimeout time.Duration
	log         zerolog.Logger
	bell        bell.Bell
	publisher   event.Publisher
	now         func() time.Time
}

// New creates an empty history.
func New(opts ...Option) *History {
	h := &History{
		cursor:    -1,
		capacity:  DefaultCapacity,
		log:       zerolog.Nop(),
		bell:      bell.Nop,
		publisher: event.NopPublisher,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// operation is the bookkept half of a Push, Undo or Redo waiting for its
// effect to run.
type operation struct {
	dir    Direction
	entry  *entry
	ticket *ticket
	change Change
}

// Push records action as the newest entry, dropping any redo tail, and runs
// its forward effect. Entries beyond capacity are evicted oldest first.
//
// The entry is recorded even if the effect fails.
func (h *History) Push(ctx context.Context, action Action) error {
	op, err := h.beginPush(ctx, action)
	if err != nil {
		return err
	}
	_, err = h.run(ctx, op)
	return err
}

// Undo steps the cursor back and runs the backward effect of the entry it
// leaves. At the start of history it rings the bell and returns Boundary.
func (h *History) Undo(ctx context.Context) (Result, error) {
	op, ok := h.beginStep(DirectionUndo)
	if !ok {
		h.boundary(ctx, DirectionUndo)
		return Boundary, nil
	}
	return h.run(ctx, op)
}

// Redo steps the cursor forward and runs the forward effect of the entry it
// reaches. At the end of history it rings the bell and returns Boundary.
func (h *History) Redo(ctx context.Context) (Result, error) {
	op, ok := h.beginStep(DirectionRedo)
	if !ok {
		h.boundary(ctx, DirectionRedo)
		return Boundary, nil
	}
	return h.run(ctx, op)
}

func (h *History) beginPush(ctx context.Context, action Action) (*operation, error) {
	if err := action.Validate(); err != nil {
		return nil, err
	}

	h.mu.Lock()

	discarded := len(h.entries) - (h.cursor + 1)
	clear(h.entries[h.cursor+1:])
	h.entries = h.entries[:h.cursor+1]

	e := &entry{
		id:        uuid.New(),
		action:    action,
		timestamp: h.now(),
	}
	h.entries = append(h.entries, e)
	evicted := h.evictLocked()
	h.cursor = len(h.entries) - 1
	h.checkLocked("push")

	op := &operation{
		dir:    DirectionPush,
		entry:  e,
		ticket: h.queue.enqueue(),
		change: Change{
			Direction: DirectionPush,
			Entry:     e.info(h.cursor, h.cursor),
			Cursor:    h.cursor,
			Len:       len(h.entries),
		},
	}
	cursor, n := h.cursor, len(h.entries)
	h.mu.Unlock()

	h.log.Debug().
		Str("entry", e.id.String()).
		Str("description", action.Description).
		Int("discarded", discarded).
		Int("evicted", len(evicted)).
		Int("cursor", cursor).
		Int("len", n).
		Msg("history push")

	if len(evicted) > 0 {
		h.publish(ctx, TopicEvicted, Change{Removed: len(evicted), Cursor: cursor, Len: n})
	}
	return op, nil
}

// beginStep performs the bookkeeping of Undo or Redo. It returns false when
// there is nothing to step over.
func (h *History) beginStep(dir Direction) (*operation, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var e *entry
	var index int
	switch dir {
	case DirectionUndo:
		if h.cursor < 0 {
			return nil, false
		}
		index = h.cursor
		e = h.entries[index]
		h.cursor--
	case DirectionRedo:
		if h.cursor+1 >= len(h.entries) {
			return nil, false
		}
		h.cursor++
		index = h.cursor
		e = h.entries[index]
	}
	h.checkLocked(dir.String())

	return &operation{
		dir:    dir,
		entry:  e,
		ticket: h.queue.enqueue(),
		change: Change{
			Direction: dir,
			Entry:     e.info(index, h.cursor),
			Cursor:    h.cursor,
			Len:       len(h.entries),
		},
	}, true
}

// run waits for op's turn, then runs its effect and the action's common
// effect. Effect errors are returned unchanged.
func (h *History) run(ctx context.Context, op *operation) (Result, error) {
	if err := h.acquire(ctx, op.ticket); err != nil {
		h.log.Warn().Err(err).
			Str("direction", op.dir.String()).
			Str("entry", op.entry.id.String()).
			Msg("history effect did not run")
		return Applied, err
	}
	defer h.queue.release()

	action := op.entry.action
	if err := action.effect(op.dir)(ctx); err != nil {
		h.log.Warn().Err(err).
			Str("direction", op.dir.String()).
			Str("entry", op.entry.id.String()).
			Msg("history effect failed")
		return Applied, err
	}

	if action.Common != nil {
		if err := action.Common(ctx, op.dir); err != nil {
			h.log.Warn().Err(err).
				Str("direction", op.dir.String()).
				Str("entry", op.entry.id.String()).
				Msg("history common effect failed")
			return Applied, err
		}
	}

	h.publish(ctx, directionTopic(op.dir), op.change)
	return Applied, nil
}

// acquire waits for t to hold the effect queue, bounded by the wait timeout.
func (h *History) acquire(ctx context.Context, t *ticket) error {
	if h.waitTimeout <= 0 {
		return h.queue.wait(ctx, t)
	}

	waitCtx, cancel := context.WithTimeout(ctx, h.waitTimeout)
	defer cancel()

	err := h.queue.wait(waitCtx, t)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w: waited %s", ErrStuck, h.waitTimeout)
	}
	return err
}

func (h *History) boundary(ctx context.Context, dir Direction) {
	h.mu.Lock()
	cursor, n := h.cursor, len(h.entries)
	h.mu.Unlock()

	h.log.Debug().
		Str("direction", dir.String()).
		Int("cursor", cursor).
		Int("len", n).
		Msg("history boundary")

	h.bell.Ring()
	h.publish(ctx, TopicBoundary, Change{Direction: dir, Cursor: cursor, Len: n})
}

// Clear removes all history. Effects still queued complete with ErrDropped;
// an effect already running finishes normally.
func (h *History) Clear() {
	h.mu.Lock()
	removed := len(h.entries)
	clear(h.entries)
	h.entries = nil
	h.cursor = -1
	dropped := h.queue.drop()
	h.mu.Unlock()

	h.log.Debug().Int("removed", removed).Int("dropped", dropped).Msg("history cleared")
	h.publish(context.Background(), TopicCleared, Change{Removed: removed, Cursor: -1})
}

// ClearGroup removes every entry tagged with tag and returns how many were
// removed. The cursor moves back once for each removed entry at or before
// it, so it keeps pointing at the same applied entry (or the nearest
// earlier one). An empty tag removes nothing.
func (h *History) ClearGroup(tag string) int {
	if tag == "" {
		return 0
	}

	h.mu.Lock()
	removed := 0
	cursor := h.cursor
	kept := h.entries[:0]
	for i, e := range h.entries {
		if e.action.GroupTag != tag {
			kept = append(kept, e)
			continue
		}
		removed++
		if i <= h.cursor {
			cursor--
		}
	}
	clear(h.entries[len(kept):])
	h.entries = kept
	h.cursor = cursor
	h.checkLocked("clear group")
	n := len(h.entries)
	h.mu.Unlock()

	if removed == 0 {
		return 0
	}

	h.log.Debug().Str("tag", tag).Int("removed", removed).Int("cursor", cursor).Msg("history group cleared")
	h.publish(context.Background(), TopicGroupCleared, Change{
		Removed:  removed,
		GroupTag: tag,
		Cursor:   cursor,
		Len:      n,
	})
	return removed
}

// SetCapacity changes the maximum number of entries.
// If the history is larger, oldest entries are removed.
func (h *History) SetCapacity(n int) {
	if n <= 0 {
		n = DefaultCapacity
	}

	h.mu.Lock()
	h.capacity = n
	evicted := h.evictLocked()
	h.checkLocked("set capacity")
	cursor, size := h.cursor, len(h.entries)
	h.mu.Unlock()

	if len(evicted) > 0 {
		h.log.Debug().Int("capacity", n).Int("evicted", len(evicted)).Msg("history capacity reduced")
		h.publish(context.Background(), TopicEvicted, Change{Removed: len(evicted), Cursor: cursor, Len: size})
	}
}

// evictLocked drops the oldest entries beyond capacity, shifting the cursor
// with them but never below -1.
func (h *History) evictLocked() []*entry {
	excess := len(h.entries) - h.capacity
	if excess <= 0 {
		return nil
	}

	evicted := slices.Clone(h.entries[:excess])
	h.entries = slices.Delete(h.entries, 0, excess)
	h.cursor = max(h.cursor-excess, -1)
	return evicted
}

func (h *History) checkLocked(op string) {
	if h.cursor < -1 || h.cursor >= len(h.entries) || len(h.entries) > h.capacity {
		panic(&InvariantError{
			Op:       op,
			Cursor:   h.cursor,
			Len:      len(h.entries),
			Capacity: h.capacity,
		})
	}
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Cursor returns the index of the last applied entry, or -1.
func (h *History) Cursor() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor
}

// Capacity returns the maximum number of entries.
func (h *History) Capacity() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.capacity
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor >= 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor+1 < len(h.entries)
}

// Busy returns true while an effect is executing.
func (h *History) Busy() bool {
	return h.queue.inFlight()
}

// Pending returns the number of effects queued behind the running one.
func (h *History) Pending() int {
	return h.queue.pending()
}

// Entries returns info about every entry, oldest first.
func (h *History) Entries() []Info {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]Info, len(h.entries))
	for i, e := range h.entries {
		result[i] = e.info(i, h.cursor)
	}
	return result
}

// PeekUndo returns info about the entry the next Undo would reverse.
func (h *History) PeekUndo() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor < 0 {
		return Info{}, false
	}
	return h.entries[h.cursor].info(h.cursor, h.cursor), true
}

// PeekRedo returns info about the entry the next Redo would reapply.
func (h *History) PeekRedo() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	next := h.cursor + 1
	if next >= len(h.entries) {
		return Info{}, false
	}
	return h.entries[next].info(next, h.cursor), true
}
