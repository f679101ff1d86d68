package lua

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/formedit/internal/engine/history"
)

// ScriptEdit is an Edit whose undo and redo are Lua functions.
type ScriptEdit struct {
	history.BaseEdit

	state       *State
	docID       string
	description string
	significant bool

	apply *lua.LFunction
	undo  *lua.LFunction
	redo  *lua.LFunction
}

// NewScriptEdit creates a script edit. apply may be nil, in which case the
// first application calls redo.
func NewScriptEdit(s *State, docID, description string, apply, undo, redo *lua.LFunction) *ScriptEdit {
	return &ScriptEdit{
		state:       s,
		docID:       docID,
		description: description,
		significant: true,
		apply:       apply,
		undo:        undo,
		redo:        redo,
	}
}

// SetSignificant sets whether the edit is an undo stop.
func (e *ScriptEdit) SetSignificant(v bool) {
	e.significant = v
}

// Apply performs the edit the first time.
func (e *ScriptEdit) Apply() error {
	fn := e.apply
	if fn == nil {
		fn = e.redo
	}
	if err := e.state.invoke(fn); err != nil {
		return fmt.Errorf("apply %q: %w", e.description, err)
	}
	return nil
}

func (e *ScriptEdit) Undo() error {
	if err := e.state.invoke(e.undo); err != nil {
		return fmt.Errorf("undo %q: %w", e.description, err)
	}
	e.MarkUndone()
	return nil
}

func (e *ScriptEdit) Redo() error {
	if err := e.state.invoke(e.redo); err != nil {
		return fmt.Errorf("redo %q: %w", e.description, err)
	}
	e.MarkRedone()
	return nil
}

func (e *ScriptEdit) IsSignificant() bool { return e.significant }
func (e *ScriptEdit) DocumentID() string  { return e.docID }
func (e *ScriptEdit) Description() string { return e.description }

// Die drops the function references so the Lua closures can be collected.
func (e *ScriptEdit) Die() {
	e.BaseEdit.Die()
	e.apply, e.undo, e.redo = nil, nil, nil
}

var (
	_ history.Edit    = (*ScriptEdit)(nil)
	_ history.Applier = (*ScriptEdit)(nil)
)
