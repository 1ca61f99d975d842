package history

import (
	"errors"
	"fmt"
)

// Errors returned by history operations.
var (
	// ErrInvalidAction indicates an action without forward or backward effect.
	ErrInvalidAction = errors.New("invalid action")

	// ErrStuck indicates an effect waited longer than the configured wait
	// timeout for the effect ahead of it to finish.
	ErrStuck = errors.New("history stuck behind in-flight effect")

	// ErrDropped indicates a queued effect was discarded by Clear before it started.
	ErrDropped = errors.New("effect dropped by clear")

	// ErrCheckpointNotFound indicates the checkpoint entry is no longer in history.
	ErrCheckpointNotFound = errors.New("checkpoint not found")
)

// InvariantError describes corrupted history bookkeeping. It is raised with
// panic and never returned: a correct history cannot produce it.
type InvariantError struct {
	Op       string
	Cursor   int
	Len      int
	Capacity int
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return fmt.Sprintf("history invariant violated after %s: cursor=%d len=%d capacity=%d",
		e.Op, e.Cursor, e.Len, e.Capacity)
}
