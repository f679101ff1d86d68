package coordinator

import "errors"

// Errors returned by the coordinator.
var (
	// ErrEditorExists indicates an editor id is already registered.
	ErrEditorExists = errors.New("editor already registered")

	// ErrEditorNotFound indicates an editor id is not registered.
	ErrEditorNotFound = errors.New("editor not found")

	// ErrEditorIDMismatch indicates a history was registered under an id
	// other than its own.
	ErrEditorIDMismatch = errors.New("history editor id does not match")

	// ErrInvalidEditorID indicates an empty editor id.
	ErrInvalidEditorID = errors.New("invalid editor id")
)
