package lua

import "errors"

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionCancelled is returned when the state's context ends mid-script.
	ErrExecutionCancelled = errors.New("lua execution cancelled")
)
