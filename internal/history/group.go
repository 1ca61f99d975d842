package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Compound groups several actions into one undo unit. Forward effects run in
// order and backward effects in reverse order. If a forward effect fails, the
// members already applied are reversed before the error is returned; any
// rollback failures are joined to it.
func Compound(description, tag string, actions ...Action) (Action, error) {
	if len(actions) == 0 {
		return Action{}, fmt.Errorf("%w: compound %q has no actions", ErrInvalidAction, description)
	}
	for i, a := range actions {
		if err := a.Validate(); err != nil {
			return Action{}, fmt.Errorf("compound %q step %d: %w", description, i, err)
		}
	}
	if description == "" {
		description = fmt.Sprintf("%d operations", len(actions))
		if len(actions) == 1 {
			description = actions[0].Description
		}
	}

	members := append([]Action(nil), actions...)
	compound := Action{
		Description: description,
		GroupTag:    tag,
		Forward: func(ctx context.Context) error {
			for i, a := range members {
				if err := a.Forward(ctx); err != nil {
					errs := []error{fmt.Errorf("compound %q step %d: %w", description, i, err)}
					for j := i - 1; j >= 0; j-- {
						if berr := members[j].Backward(ctx); berr != nil {
							errs = append(errs, fmt.Errorf("rollback compound %q step %d: %w", description, j, berr))
						}
					}
					return errors.Join(errs...)
				}
			}
			return nil
		},
		Backward: func(ctx context.Context) error {
			for i := len(members) - 1; i >= 0; i-- {
				if err := members[i].Backward(ctx); err != nil {
					return fmt.Errorf("undo compound %q step %d: %w", description, i, err)
				}
			}
			return nil
		},
	}

	hasCommon := false
	for _, a := range members {
		hasCommon = hasCommon || a.Common != nil
	}
	if hasCommon {
		compound.Common = func(ctx context.Context, dir Direction) error {
			for k := range members {
				i := k
				if dir == DirectionUndo {
					i = len(members) - 1 - k
				}
				if members[i].Common == nil {
					continue
				}
				if err := members[i].Common(ctx, dir); err != nil {
					return fmt.Errorf("compound %q step %d: %w", description, i, err)
				}
			}
			return nil
		}
	}
	return compound, nil
}

// Checkpoint represents a point in history that can be returned to.
type Checkpoint struct {
	id     uuid.UUID
	origin bool // before the first entry
}

// IsOrigin reports whether the checkpoint was taken with nothing applied.
func (c Checkpoint) IsOrigin() bool {
	return c.origin
}

// CreateCheckpoint creates a checkpoint at the current cursor position.
func (h *History) CreateCheckpoint() Checkpoint {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor < 0 {
		return Checkpoint{origin: true}
	}
	return Checkpoint{id: h.entries[h.cursor].id}
}

// position returns the cursor value the checkpoint corresponds to.
func (h *History) position(cp Checkpoint) (int, error) {
	if cp.origin {
		return -1, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for i, e := range h.entries {
		if e.id == cp.id {
			return i, nil
		}
	}
	return 0, ErrCheckpointNotFound
}

// UndoToCheckpoint undoes entries until the cursor is at or before the checkpoint.
func (h *History) UndoToCheckpoint(ctx context.Context, cp Checkpoint) error {
	for {
		pos, err := h.position(cp)
		if err != nil {
			return err
		}
		if h.Cursor() <= pos {
			return nil
		}
		res, err := h.Undo(ctx)
		if err != nil {
			return err
		}
		if res == Boundary {
			return nil
		}
	}
}

// RedoToCheckpoint redoes entries until the cursor reaches the checkpoint.
// It stops early if the redo tail runs out.
func (h *History) RedoToCheckpoint(ctx context.Context, cp Checkpoint) error {
	for {
		pos, err := h.position(cp)
		if err != nil {
			return err
		}
		if h.Cursor() >= pos {
			return nil
		}
		res, err := h.Redo(ctx)
		if err != nil {
			return err
		}
		if res == Boundary {
			return nil
		}
	}
}
