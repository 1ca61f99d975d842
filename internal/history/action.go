package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Effect applies or reverses an operation. It may block on I/O or on other
// goroutines; the history runs at most one effect at a time.
type Effect func(ctx context.Context) error

// CommonEffect runs after Forward or Backward completes successfully and is
// told which direction just ran. Typical use is refreshing dependent UI.
type CommonEffect func(ctx context.Context, dir Direction) error

// Direction identifies the operation that triggered an effect.
type Direction int

const (
	// DirectionPush is a first application through Push.
	DirectionPush Direction = iota + 1
	// DirectionUndo is a reversal through Undo.
	DirectionUndo
	// DirectionRedo is a reapplication through Redo.
	DirectionRedo
)

// String returns "push", "undo" or "redo".
func (d Direction) String() string {
	switch d {
	case DirectionPush:
		return "push"
	case DirectionUndo:
		return "undo"
	case DirectionRedo:
		return "redo"
	default:
		return "none"
	}
}

// Action is one reversible operation. It must not be modified after it has
// been pushed.
type Action struct {
	// Forward applies (or reapplies) the operation.
	Forward Effect

	// Backward reverses the operation.
	Backward Effect

	// Common is optional and runs after either direction.
	Common CommonEffect

	// GroupTag is optional; ClearGroup removes every entry sharing it.
	GroupTag string

	// Description is free-form text shown in history listings.
	Description string
}

// Validate reports whether the action can be pushed.
func (a Action) Validate() error {
	switch {
	case a.Forward == nil && a.Backward == nil:
		return fmt.Errorf("%w: missing forward and backward effects", ErrInvalidAction)
	case a.Forward == nil:
		return fmt.Errorf("%w: missing forward effect", ErrInvalidAction)
	case a.Backward == nil:
		return fmt.Errorf("%w: missing backward effect", ErrInvalidAction)
	}
	return nil
}

// effect returns the effect a direction runs.
func (a Action) effect(dir Direction) Effect {
	if dir == DirectionUndo {
		return a.Backward
	}
	return a.Forward
}

// Info provides read-only info about a history entry.
// Used for displaying history to users and for assertions in tests.
type Info struct {
	ID          uuid.UUID // Assigned when the action was pushed
	Index       int       // Position in the history at snapshot time
	Description string    // Action description
	GroupTag    string    // Action group tag, may be empty
	Timestamp   time.Time // When the action was pushed
	Applied     bool      // Index <= cursor
}

// entry wraps an action with metadata.
type entry struct {
	id        uuid.UUID
	action    Action
	timestamp time.Time
}

func (e *entry) info(index, cursor int) Info {
	return Info{
		ID:          e.id,
		Index:       index,
		Description: e.action.Description,
		GroupTag:    e.action.GroupTag,
		Timestamp:   e.timestamp,
		Applied:     index <= cursor,
	}
}
