package history

// Edit is an atomic, reversible mutation of a document.
//
// An Edit is added to a History after it has been performed. The History calls
// Undo and Redo to move through it and Die once the edit is evicted.
type Edit interface {
	// Undo reverses the edit.
	Undo() error

	// Redo performs the edit again after an Undo.
	Redo() error

	// CanUndo reports whether Undo may be called.
	CanUndo() bool

	// CanRedo reports whether Redo may be called.
	CanRedo() bool

	// IsSignificant reports whether the edit is a user-visible undo stop.
	IsSignificant() bool

	// DocumentID identifies the logical document the edit mutates.
	DocumentID() string

	// Description returns a human-readable description.
	Description() string

	// Die releases the resources held by the edit. It may be called more than
	// once when the edit is shared by several histories.
	Die()
}

// Applier is implemented by edits that can perform themselves for the first
// time. History.Execute uses it.
type Applier interface {
	Apply() error
}

// BaseEdit carries the done/alive bookkeeping shared by most edits.
// Embed it and call MarkUndone/MarkRedone from Undo/Redo.
type BaseEdit struct {
	undone bool
	dead   bool
}

// CanUndo returns true if the edit is alive and currently done.
func (b *BaseEdit) CanUndo() bool {
	return !b.dead && !b.undone
}

// CanRedo returns true if the edit is alive and currently undone.
func (b *BaseEdit) CanRedo() bool {
	return !b.dead && b.undone
}

// MarkUndone records that the edit was undone.
func (b *BaseEdit) MarkUndone() {
	b.undone = true
}

// MarkRedone records that the edit was redone.
func (b *BaseEdit) MarkRedone() {
	b.undone = false
}

// Die marks the edit dead. Safe to call multiple times.
func (b *BaseEdit) Die() {
	b.dead = true
}

// IsDead returns true once Die has been called.
func (b *BaseEdit) IsDead() bool {
	return b.dead
}

// IsSignificant returns true. Edits that are sub-steps override it.
func (b *BaseEdit) IsSignificant() bool {
	return true
}
