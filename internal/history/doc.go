// Package history provides a linear undo/redo history of reversible actions.
//
// An Action carries its own Forward and Backward effects, plus an optional
// Common effect that runs after either direction:
//
//	h := history.New(history.WithCapacity(500))
//
//	err := h.Push(ctx, history.Action{
//	    Description: "Move node",
//	    Forward:     func(ctx context.Context) error { return scene.Move(id, to) },
//	    Backward:    func(ctx context.Context) error { return scene.Move(id, from) },
//	    Common:      func(ctx context.Context, dir history.Direction) error { return ui.Refresh() },
//	})
//
//	res, err := h.Undo(ctx)
//	if res == history.Boundary {
//	    // nothing to undo; the bell already rang
//	}
//
// # Ordering
//
// The cursor and entries are updated synchronously when Push, Undo or Redo is
// called. Effects then run strictly one at a time, in the order the
// operations were called, however long each effect takes. PushAsync,
// UndoAsync and RedoAsync do the bookkeeping and return immediately with a
// Completion.
//
// # Failures
//
// Effect errors are returned unchanged. Bookkeeping is not rolled back: a
// failed Undo still moved the cursor. Callers that cannot tolerate this
// should Clear the history after a failure.
//
// # Groups and Checkpoints
//
// Entries pushed with a GroupTag can be removed together with ClearGroup,
// wherever they sit relative to the cursor. Compound combines several actions
// into one undo unit, and CreateCheckpoint / UndoToCheckpoint walk the
// cursor back to a saved position.
package history
