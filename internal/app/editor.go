package app

import (
	"fmt"

	"github.com/dshills/formedit/internal/engine/history"
	"github.com/dshills/formedit/internal/form"
)

// Editor is one editor view: a top-level form, its nested forms and an
// undo history.
type Editor struct {
	id      string
	root    *form.Form
	history *history.History
	app     *Application
}

// ID returns the editor id.
func (e *Editor) ID() string { return e.id }

// FormID returns the id of the top-level form.
func (e *Editor) FormID() string { return e.root.ID }

// Form returns the top-level form.
func (e *Editor) Form() *form.Form { return e.root }

// History returns the editor's undo history.
func (e *Editor) History() *history.History { return e.history }

func (e *Editor) form(op, formID string) (*form.Form, error) {
	if err := e.app.sync(); err != nil {
		return nil, err
	}
	f, ok := e.root.Find(formID)
	if !ok {
		return nil, NewOperationError(op, formID, ErrFormNotInEditor)
	}
	return f, nil
}

// AddComponent adds a component to formID, which must be the editor's form
// or one nested in it.
func (e *Editor) AddComponent(formID, name, typ string) error {
	f, err := e.form("add", formID)
	if err != nil {
		return err
	}
	return e.Execute(form.NewAddComponent(f, name, typ))
}

// RemoveComponent removes a component from formID.
func (e *Editor) RemoveComponent(formID, name string) error {
	f, err := e.form("remove", formID)
	if err != nil {
		return err
	}
	return e.Execute(form.NewRemoveComponent(f, name))
}

// SetProperty sets a component property on formID.
func (e *Editor) SetProperty(formID, component, property, value string) error {
	f, err := e.form("set", formID)
	if err != nil {
		return err
	}
	return e.Execute(form.NewSetProperty(f, component, property, value))
}

// Execute applies edit and records it. Outside a group the same edit is
// also added to every other open editor showing its document.
func (e *Editor) Execute(edit history.Edit) error {
	if err := e.app.sync(); err != nil {
		return err
	}
	if err := e.history.Execute(edit); err != nil {
		return NewOperationError("execute", e.id, err)
	}
	if !e.history.IsRecording() {
		e.share(edit)
	}
	return nil
}

// share adds edit to the histories of the other editors that show its
// document.
func (e *Editor) share(edit history.Edit) {
	for _, other := range e.app.viewers(edit.DocumentID(), e) {
		other.history.AddEdit(edit)
	}
}

// RemoveComponents removes several components from formID as one entry.
func (e *Editor) RemoveComponents(formID string, names ...string) error {
	f, err := e.form("remove", formID)
	if err != nil {
		return err
	}
	edits := make([]history.Edit, len(names))
	for i, name := range names {
		edits[i] = form.NewRemoveComponent(f, name)
	}
	return e.record(func() error {
		return e.history.ExecuteGrouped(fmt.Sprintf("Remove %d components", len(names)), edits...)
	})
}

// Transaction records the edits made by fn as one entry and shares the
// resulting group. Nested transactions join the enclosing one.
func (e *Editor) Transaction(name string, fn func() error) error {
	if err := e.app.sync(); err != nil {
		return err
	}
	return e.record(func() error {
		return e.history.Transaction(name, fn)
	})
}

// record runs fn and shares the entry it leaves on top of the history.
// Nothing is shared while an enclosing group is still open.
func (e *Editor) record(fn func() error) error {
	before := e.history.Top()
	if err := fn(); err != nil {
		return NewOperationError("record", e.id, err)
	}
	if e.history.IsRecording() {
		return nil
	}
	if top := e.history.Top(); top != nil && !history.SameEdit(top, before) {
		e.share(top)
	}
	return nil
}

// Undo undoes the most recent significant edit. Other editors are
// reconciled by the coordinator.
func (e *Editor) Undo() error {
	if err := e.app.sync(); err != nil {
		return err
	}
	return e.history.Undo()
}

// Redo redoes the next significant edit.
func (e *Editor) Redo() error {
	if err := e.app.sync(); err != nil {
		return err
	}
	return e.history.Redo()
}

// CanUndo reports whether Undo would succeed.
func (e *Editor) CanUndo() bool { return e.history.CanUndo() }

// CanRedo reports whether Redo would succeed.
func (e *Editor) CanRedo() bool { return e.history.CanRedo() }

// Close closes the editor view.
func (e *Editor) Close() error {
	return e.app.CloseEditor(e.id)
}
