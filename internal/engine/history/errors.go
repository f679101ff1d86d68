package history

import (
	"errors"
	"fmt"
)

// Errors returned by history operations.
var (
	// ErrNoEditAvailable indicates there is no significant, unlocked edit to
	// undo or redo.
	ErrNoEditAvailable = errors.New("no edit available")

	// ErrNothingToUndo is returned by Undo and UndoCursor. It matches
	// ErrNoEditAvailable with errors.Is.
	ErrNothingToUndo = fmt.Errorf("nothing to undo: %w", ErrNoEditAvailable)

	// ErrNothingToRedo is returned by Redo and RedoCursor. It matches
	// ErrNoEditAvailable with errors.Is.
	ErrNothingToRedo = fmt.Errorf("nothing to redo: %w", ErrNoEditAvailable)

	// ErrTransactionOpen indicates an undo or redo was requested while a
	// group is being recorded.
	ErrTransactionOpen = errors.New("transaction in progress")

	// ErrInvariantViolation indicates the history reached an inconsistent state.
	ErrInvariantViolation = errors.New("history invariant violated")
)

// InvariantError describes a broken cursor or trim window.
type InvariantError struct {
	Op       string
	Index    int
	Len      int
	Capacity int
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return fmt.Sprintf("history invariant violated in %s: index=%d len=%d capacity=%d",
		e.Op, e.Index, e.Len, e.Capacity)
}

// Is allows errors.Is to match InvariantError with ErrInvariantViolation.
func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariantViolation
}

// EditError wraps a failure reported by an edit while walking the history.
type EditError struct {
	Op          string
	Index       int
	Description string
	Err         error
}

// Error implements the error interface.
func (e *EditError) Error() string {
	return fmt.Sprintf("%s %q at entry %d: %v", e.Op, e.Description, e.Index, e.Err)
}

// Unwrap returns the underlying error.
func (e *EditError) Unwrap() error {
	return e.Err
}
