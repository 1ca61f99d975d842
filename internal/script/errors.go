package script

import "errors"

var (
	// ErrStateClosed is returned when operating on a closed runner.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNestedCall is returned when an effect tries to change the history
	// that is running it. The nested call would queue behind its own effect.
	ErrNestedCall = errors.New("history call inside an effect")

	// ErrNotFunction is returned when an effect field is not a Lua function.
	ErrNotFunction = errors.New("effect is not a function")
)
