// Package history provides the per-view undo/redo engine for the form editor.
//
// A History is a bounded, cursor-indexed list of edits. Entries below the
// cursor (NextAddIndex) are done and can be undone; entries at or above it were
// undone and can be redone. Adding a new edit discards everything above the
// cursor.
//
// # Edits and Proxies
//
// Edits are produced outside this package and may be shared by several
// histories when the same document (for example a nested form) is open in more
// than one editor view. Each History wraps every edit in its own Proxy so that
// a view can lock an entry without affecting the other views:
//
//	h := history.New(history.WithCapacity(100))
//	h.AddEdit(edit)
//	if h.CanUndo() {
//	    _ = h.Undo()
//	}
//
// Two proxies refer to the same edit when SameEdit reports true for them.
//
// # Significance
//
// Insignificant edits are never the target of Undo or Redo. They are walked
// over (and undone or redone) on the way to the nearest significant edit, so a
// run of insignificant edits followed by a significant one behaves as a single
// visible step.
//
// # Cross-view synchronization
//
// After a successful Undo or Redo the History informs its Notifier, usually
// the editor coordinator, which moves the cursors of sibling histories with
// UndoCursor/RedoCursor or locks their stale entries.
//
// # Transactions
//
// While a group is open the History is Recording and added edits are collected
// into one CompoundEdit:
//
//	h.BeginGroup("Align components")
//	// ... several edits ...
//	h.EndGroup()
//
// A History is not safe for concurrent use. All calls are expected to come
// from the goroutine that owns the editor view.
package history
