package form

import "errors"

// Errors returned by form operations.
var (
	ErrComponentExists   = errors.New("component already exists")
	ErrComponentNotFound = errors.New("component not found")
	ErrFormExists        = errors.New("form already exists")
	ErrFormNotFound      = errors.New("form not found")
	ErrEmbedCycle        = errors.New("embedding would create a cycle")
)
