package history

import "errors"

// Mode returns the recording state.
func (h *History) Mode() Mode {
	return h.mode
}

// IsRecording returns true if a group is open.
func (h *History) IsRecording() bool {
	return h.mode == ModeRecording
}

// BeginGroup opens a group. Edits added until the matching EndGroup become
// a single entry. Nested calls join the open group; only the outermost
// EndGroup records it.
func (h *History) BeginGroup(name string) {
	if h.mode == ModeRecording {
		h.depth++
		return
	}
	h.mode = ModeRecording
	h.group = NewCompoundEdit(name)
	h.depth = 1
}

// EndGroup closes one level of grouping. Closing the outermost level
// records the group as one entry; an empty group records nothing.
func (h *History) EndGroup() {
	if h.mode != ModeRecording {
		return
	}
	h.depth--
	if h.depth > 0 {
		return
	}
	g := h.group
	h.mode = ModeIdle
	h.group = nil

	if g.IsEmpty() {
		return
	}
	h.push(g)
}

// CancelGroup discards the open group at every nesting level without
// recording it. The collected edits die; their effect on the document is
// not reverted.
func (h *History) CancelGroup() {
	if h.mode != ModeRecording {
		return
	}
	g := h.group
	h.mode = ModeIdle
	h.group = nil
	h.depth = 0
	g.Die()
}

// GroupScope provides a convenient way to group edits using defer.
// Usage:
//
//	func alignAll(h *history.History) {
//	    defer h.GroupScope("Align").End()
//	    // ... multiple edits ...
//	}
type GroupScope struct {
	history *History
	active  bool
}

// GroupScope starts a new group scope.
func (h *History) GroupScope(name string) *GroupScope {
	h.BeginGroup(name)
	return &GroupScope{
		history: h,
		active:  true,
	}
}

// End ends the group scope.
// Safe to call multiple times; only the first call has effect.
func (g *GroupScope) End() {
	if g.active {
		g.history.EndGroup()
		g.active = false
	}
}

// Cancel cancels the group scope without recording an entry.
func (g *GroupScope) Cancel() {
	if g.active {
		g.history.CancelGroup()
		g.active = false
	}
}

// Transaction runs fn inside a group. If fn returns an error the edits fn
// added are undone and discarded; edits an enclosing group collected before
// the call stay. Otherwise the group level is closed.
func (h *History) Transaction(name string, fn func() error) error {
	h.BeginGroup(name)
	mark := len(h.group.Edits)

	if err := fn(); err != nil {
		return errors.Join(err, h.rollbackGroup(mark))
	}

	h.EndGroup()
	return nil
}

// rollbackGroup undoes and kills the group's edits from index mark on,
// then closes one group level.
func (h *History) rollbackGroup(mark int) error {
	if h.mode != ModeRecording {
		return nil
	}
	if mark > len(h.group.Edits) {
		mark = len(h.group.Edits)
	}

	tail := NewCompoundEdit("", h.group.Edits[mark:]...)
	h.group.Edits = h.group.Edits[:mark:mark]

	var err error
	if !tail.IsEmpty() {
		err = tail.Undo()
		tail.Die()
	}
	h.EndGroup()
	return err
}

// ExecuteGrouped executes several edits as a single entry.
func (h *History) ExecuteGrouped(name string, edits ...Edit) error {
	if len(edits) == 0 {
		return nil
	}
	if len(edits) == 1 {
		return h.Execute(edits[0])
	}

	return h.Transaction(name, func() error {
		for _, e := range edits {
			if err := h.Execute(e); err != nil {
				return err
			}
		}
		return nil
	})
}
