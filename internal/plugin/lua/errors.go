package lua

import "errors"

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when a run exceeds its timeout.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrOperationLimit is returned when a run makes too many host calls.
	ErrOperationLimit = errors.New("lua operation limit exceeded")
)
