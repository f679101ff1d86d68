package history

import (
	"fmt"
	"slices"
)

// Mode is the recording state of a History.
type Mode int

const (
	// ModeIdle means every added edit becomes its own entry.
	ModeIdle Mode = iota

	// ModeRecording means added edits are collected into the open group.
	ModeRecording
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeRecording:
		return "recording"
	default:
		return "unknown"
	}
}

// History is one editor view's bounded, cursor-indexed list of edits.
type History struct {
	entries []*Proxy

	// Entries below nextAdd are done, entries at or above it are undone.
	nextAdd int

	capacity int

	editorID string
	notifier Notifier

	// Grouping state
	mode  Mode
	group *CompoundEdit
	depth int
}

// New creates a new history.
func New(opts ...Option) *History {
	h := &History{
		capacity: DefaultCapacity,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// EditorID returns the identifier of the owning editor view.
func (h *History) EditorID() string {
	return h.editorID
}

// SetNotifier replaces the Notifier. A nil notifier disables notification.
func (h *History) SetNotifier(n Notifier) {
	h.notifier = n
}

// AddEdit records an edit that has already been performed.
//
// While a group is being recorded the edit joins the group and AddEdit
// returns true. Otherwise every undone entry is discarded, the edit is
// appended as a new entry and AddEdit returns false.
func (h *History) AddEdit(e Edit) bool {
	if e == nil {
		return false
	}
	e = Unwrap(e)

	if h.mode == ModeRecording {
		h.group.Add(e)
		return true
	}

	h.push(e)
	return false
}

// Execute applies e when it implements Applier and then records it.
func (h *History) Execute(e Edit) error {
	if a, ok := e.(Applier); ok {
		if err := a.Apply(); err != nil {
			return fmt.Errorf("apply %q: %w", e.Description(), err)
		}
	}
	h.AddEdit(e)
	return nil
}

// push appends e as a new entry, dropping the undone tail first.
func (h *History) push(e Edit) {
	h.mustTrim(h.nextAdd, len(h.entries)-1)
	h.entries = append(h.entries, NewProxy(e))
	h.nextAdd = len(h.entries)
	h.trimForLimit()
}

// undoIndex returns the index of the nearest significant entry below the
// cursor, or -1.
func (h *History) undoIndex() int {
	for i := h.nextAdd - 1; i >= 0; i-- {
		if h.entries[i].IsSignificant() {
			return i
		}
	}
	return -1
}

// redoIndex returns the index of the nearest significant entry at or above
// the cursor, or -1.
func (h *History) redoIndex() int {
	for i := h.nextAdd; i < len(h.entries); i++ {
		if h.entries[i].IsSignificant() {
			return i
		}
	}
	return -1
}

// EditToBeUndone returns the entry Undo would target, or nil.
// The returned value is the history's proxy for the edit.
func (h *History) EditToBeUndone() Edit {
	if i := h.undoIndex(); i >= 0 {
		return h.entries[i]
	}
	return nil
}

// Top returns the underlying edit just below the cursor, significant or
// not, or nil.
func (h *History) Top() Edit {
	if h.nextAdd == 0 {
		return nil
	}
	return h.entries[h.nextAdd-1].Edit()
}

// EditToBeRedone returns the entry Redo would target, or nil.
// The returned value is the history's proxy for the edit.
func (h *History) EditToBeRedone() Edit {
	if i := h.redoIndex(); i >= 0 {
		return h.entries[i]
	}
	return nil
}

// CanUndo returns true if Undo would succeed in finding an unlocked target.
func (h *History) CanUndo() bool {
	if h.mode == ModeRecording {
		return false
	}
	i := h.undoIndex()
	return i >= 0 && h.entries[i].CanUndo()
}

// CanRedo returns true if Redo would succeed in finding an unlocked target.
func (h *History) CanRedo() bool {
	if h.mode == ModeRecording {
		return false
	}
	i := h.redoIndex()
	return i >= 0 && h.entries[i].CanRedo()
}

// Undo undoes every entry down to and including the nearest significant one
// and then notifies the Notifier.
func (h *History) Undo() error {
	return h.undo(true)
}

// UndoCursor moves the cursor exactly as Undo would without invoking any
// edit and without notifying. It is used when another view already performed
// the undo on the shared document.
func (h *History) UndoCursor() error {
	return h.undo(false)
}

// Redo redoes every entry up to and including the nearest significant one
// and then notifies the Notifier.
func (h *History) Redo() error {
	return h.redo(true)
}

// RedoCursor is the cursor-only counterpart of Redo.
func (h *History) RedoCursor() error {
	return h.redo(false)
}

func (h *History) undo(apply bool) error {
	if h.mode == ModeRecording {
		return ErrTransactionOpen
	}

	target := h.undoIndex()
	if target < 0 {
		return ErrNothingToUndo
	}
	p := h.entries[target]
	// The cursor-only path ignores the edit's own state: the shared edit was
	// already reversed by another view.
	if p.Locked() || (apply && !p.Edit().CanUndo()) {
		return ErrNothingToUndo
	}

	for h.nextAdd > target {
		i := h.nextAdd - 1
		if apply {
			if err := h.entries[i].Undo(); err != nil {
				return &EditError{Op: "undo", Index: i, Description: h.entries[i].Description(), Err: err}
			}
		}
		h.nextAdd = i
	}

	if apply && h.notifier != nil {
		h.notifier.NotifyUndo(h.editorID, p.Edit())
	}
	return nil
}

func (h *History) redo(apply bool) error {
	if h.mode == ModeRecording {
		return ErrTransactionOpen
	}

	target := h.redoIndex()
	if target < 0 {
		return ErrNothingToRedo
	}
	p := h.entries[target]
	if p.Locked() || (apply && !p.Edit().CanRedo()) {
		return ErrNothingToRedo
	}

	for h.nextAdd <= target {
		i := h.nextAdd
		if apply {
			if err := h.entries[i].Redo(); err != nil {
				return &EditError{Op: "redo", Index: i, Description: h.entries[i].Description(), Err: err}
			}
		}
		h.nextAdd = i + 1
	}

	if apply && h.notifier != nil {
		h.notifier.NotifyRedo(h.editorID, p.Edit())
	}
	return nil
}

// TrimEdits removes the entries in [from, to], calling Die on each from the
// highest index down, and adjusts the cursor. An empty range (from > to) is
// a no-op.
func (h *History) TrimEdits(from, to int) error {
	if from > to {
		return nil
	}
	if from < 0 || to >= len(h.entries) {
		return &InvariantError{Op: "trim", Index: from, Len: len(h.entries), Capacity: h.capacity}
	}

	for i := to; i >= from; i-- {
		h.entries[i].Die()
	}
	h.entries = slices.Delete(h.entries, from, to+1)

	if h.nextAdd > to {
		h.nextAdd -= to - from + 1
	} else if h.nextAdd >= from {
		h.nextAdd = from
	}
	return nil
}

// mustTrim trims a range computed internally. A failure is a defect in the
// trimming arithmetic.
func (h *History) mustTrim(from, to int) {
	if err := h.TrimEdits(from, to); err != nil {
		panic(err)
	}
}

// trimForLimit keeps a window of capacity entries centred on the most
// recently done entry.
func (h *History) trimForLimit() {
	size := len(h.entries)
	if size <= h.capacity {
		return
	}

	half := h.capacity / 2
	keepFrom := h.nextAdd - 1 - half
	keepTo := h.nextAdd - 1 + half

	// An even capacity gives a window one wider than the limit.
	if keepTo-keepFrom+1 > h.capacity {
		keepFrom++
	}

	if keepFrom < 0 {
		keepTo -= keepFrom
		keepFrom = 0
	}
	if keepTo >= size {
		delta := size - keepTo - 1
		keepTo += delta
		keepFrom += delta
	}

	if keepFrom < 0 || keepTo >= size || keepTo-keepFrom+1 != h.capacity {
		panic(&InvariantError{Op: "trimForLimit", Index: keepFrom, Len: size, Capacity: h.capacity})
	}

	h.mustTrim(keepTo+1, size-1)
	h.mustTrim(0, keepFrom-1)
}

// Capacity returns the maximum number of entries.
func (h *History) Capacity() int {
	return h.capacity
}

// SetCapacity changes the maximum number of entries. If the history is
// larger, entries furthest from the cursor are removed.
func (h *History) SetCapacity(capacity int) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	h.capacity = capacity
	h.trimForLimit()
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// NextAddIndex returns the cursor.
func (h *History) NextAddIndex() int {
	return h.nextAdd
}

// Contains reports whether any entry wraps the same edit as e.
func (h *History) Contains(e Edit) bool {
	for _, p := range h.entries {
		if SameEdit(p, e) {
			return true
		}
	}
	return false
}

// LockDocument locks every unlocked entry whose document is docID. Entries
// for which skip returns true are left alone. It returns the number of
// entries newly locked.
func (h *History) LockDocument(docID string, skip func(Edit) bool) int {
	n := 0
	for _, p := range h.entries {
		if p.Locked() || p.DocumentID() != docID {
			continue
		}
		if skip != nil && skip(p.Edit()) {
			continue
		}
		p.Lock(true)
		n++
	}
	return n
}

// Clear discards every entry and any open group.
func (h *History) Clear() {
	h.CancelGroup()
	h.mustTrim(0, len(h.entries)-1)
}

// Close discards the history when its editor view closes.
func (h *History) Close() {
	h.Clear()
	h.notifier = nil
}

// Validate checks 0 <= NextAddIndex <= Len <= Capacity.
func (h *History) Validate() error {
	if h.nextAdd < 0 || h.nextAdd > len(h.entries) || len(h.entries) > h.capacity {
		return &InvariantError{Op: "validate", Index: h.nextAdd, Len: len(h.entries), Capacity: h.capacity}
	}
	return nil
}
