package history

import "context"

// Completion tracks an operation issued with PushAsync, UndoAsync or RedoAsync.
type Completion struct {
	done   chan struct{}
	result Result
	err    error
}

func newCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

func (c *Completion) finish(r Result, err error) *Completion {
	c.result, c.err = r, err
	close(c.done)
	return c
}

// Done is closed once the operation's effects have finished or failed.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the operation completes and returns its outcome.
func (c *Completion) Wait() (Result, error) {
	<-c.done
	return c.result, c.err
}

// Err blocks until the operation completes and returns its error.
func (c *Completion) Err() error {
	_, err := c.Wait()
	return err
}

// PushAsync records action like Push but returns as soon as the bookkeeping
// is done. The forward effect runs on another goroutine after every
// previously issued effect.
func (h *History) PushAsync(ctx context.Context, action Action) *Completion {
	c := newCompletion()
	op, err := h.beginPush(ctx, action)
	if err != nil {
		return c.finish(Applied, err)
	}
	go func() {
		c.finish(h.run(ctx, op))
	}()
	return c
}

// UndoAsync is the non-blocking form of Undo. A boundary completes immediately.
func (h *History) UndoAsync(ctx context.Context) *Completion {
	return h.stepAsync(ctx, DirectionUndo)
}

// RedoAsync is the non-blocking form of Redo. A boundary completes immediately.
func (h *History) RedoAsync(ctx context.Context) *Completion {
	return h.stepAsync(ctx, DirectionRedo)
}

func (h *History) stepAsync(ctx context.Context, dir Direction) *Completion {
	c := newCompletion()
	op, ok := h.beginStep(dir)
	if !ok {
		h.boundary(ctx, dir)
		return c.finish(Boundary, nil)
	}
	go func() {
		c.finish(h.run(ctx, op))
	}()
	return c
}
