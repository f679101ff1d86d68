package lua

import (
	"errors"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/formedit/internal/engine/history"
)

// Host is the editing session scripts drive.
type Host interface {
	CreateForm(id, name string) error
	EmbedForm(parentID, childID string) error
	OpenEditor(formID string) (Editor, error)
}

// Editor is one editor view as seen from a script.
type Editor interface {
	ID() string
	FormID() string

	AddComponent(formID, name, typ string) error
	RemoveComponent(formID, name string) error
	SetProperty(formID, component, property, value string) error
	Execute(edit history.Edit) error

	Undo() error
	Redo() error
	CanUndo() bool
	CanRedo() bool
	Transaction(name string, fn func() error) error

	Close() error
}

const editorTypeName = "formedit.editor"

// hostModule implements the formedit global table.
type hostModule struct {
	state *State
	host  Host
}

// RegisterHost installs the formedit table backed by host.
func RegisterHost(s *State, host Host) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	m := &hostModule{state: s, host: host}
	L := s.L

	mt := L.NewTypeMetatable(editorTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"id":       m.editorID,
		"form":     m.editorForm,
		"add":      m.add,
		"remove":   m.remove,
		"set":      m.set,
		"undo":     m.undo,
		"redo":     m.redo,
		"can_undo": m.canUndo,
		"can_redo": m.canRedo,
		"group":    m.group,
		"edit":     m.edit,
		"close":    m.closeEditor,
	}))

	mod := L.NewTable()
	L.SetField(mod, "form", L.NewFunction(m.createForm))
	L.SetField(mod, "embed", L.NewFunction(m.embed))
	L.SetField(mod, "open", L.NewFunction(m.open))
	L.SetGlobal("formedit", mod)
	return nil
}

// form(id, name)
func (m *hostModule) createForm(L *lua.LState) int {
	m.state.countOperation(L)
	id := L.CheckString(1)
	name := L.OptString(2, id)

	if err := m.host.CreateForm(id, name); err != nil {
		L.RaiseError("form: %v", err)
	}
	return 0
}

// embed(parent, child)
func (m *hostModule) embed(L *lua.LState) int {
	m.state.countOperation(L)
	parent := L.CheckString(1)
	child := L.CheckString(2)

	if err := m.host.EmbedForm(parent, child); err != nil {
		L.RaiseError("embed: %v", err)
	}
	return 0
}

// open(form) -> editor
func (m *hostModule) open(L *lua.LState) int {
	m.state.countOperation(L)
	formID := L.CheckString(1)

	ed, err := m.host.OpenEditor(formID)
	if err != nil {
		L.RaiseError("open: %v", err)
		return 0
	}

	ud := L.NewUserData()
	ud.Value = ed
	L.SetMetatable(ud, L.GetTypeMetatable(editorTypeName))
	L.Push(ud)
	return 1
}

// checkEditor returns the editor receiver of a method call.
func (m *hostModule) checkEditor(L *lua.LState) Editor {
	m.state.countOperation(L)
	ud := L.CheckUserData(1)
	ed, ok := ud.Value.(Editor)
	if !ok {
		L.ArgError(1, "editor expected")
		return nil
	}
	return ed
}

// ed:id() -> string
func (m *hostModule) editorID(L *lua.LState) int {
	ed := m.checkEditor(L)
	L.Push(lua.LString(ed.ID()))
	return 1
}

// ed:form() -> string
func (m *hostModule) editorForm(L *lua.LState) int {
	ed := m.checkEditor(L)
	L.Push(lua.LString(ed.FormID()))
	return 1
}

// ed:add(name, type [, form])
func (m *hostModule) add(L *lua.LState) int {
	ed := m.checkEditor(L)
	name := L.CheckString(2)
	typ := L.CheckString(3)
	formID := L.OptString(4, ed.FormID())

	if err := ed.AddComponent(formID, name, typ); err != nil {
		L.RaiseError("add: %v", err)
	}
	return 0
}

// ed:remove(name [, form])
func (m *hostModule) remove(L *lua.LState) int {
	ed := m.checkEditor(L)
	name := L.CheckString(2)
	formID := L.OptString(3, ed.FormID())

	if err := ed.RemoveComponent(formID, name); err != nil {
		L.RaiseError("remove: %v", err)
	}
	return 0
}

// ed:set(component, property, value [, form])
func (m *hostModule) set(L *lua.LState) int {
	ed := m.checkEditor(L)
	comp := L.CheckString(2)
	prop := L.CheckString(3)
	value := L.ToStringMeta(L.CheckAny(4)).String()
	formID := L.OptString(5, ed.FormID())

	if err := ed.SetProperty(formID, comp, prop, value); err != nil {
		L.RaiseError("set: %v", err)
	}
	return 0
}

// ed:undo() -> bool
// Returns false when there is nothing to undo.
func (m *hostModule) undo(L *lua.LState) int {
	ed := m.checkEditor(L)
	return pushStep(L, "undo", ed.Undo())
}

// ed:redo() -> bool
// Returns false when there is nothing to redo.
func (m *hostModule) redo(L *lua.LState) int {
	ed := m.checkEditor(L)
	return pushStep(L, "redo", ed.Redo())
}

func pushStep(L *lua.LState, op string, err error) int {
	switch {
	case err == nil:
		L.Push(lua.LTrue)
	case errors.Is(err, history.ErrNoEditAvailable):
		L.Push(lua.LFalse)
	default:
		L.RaiseError("%s: %v", op, err)
		return 0
	}
	return 1
}

// ed:can_undo() -> bool
func (m *hostModule) canUndo(L *lua.LState) int {
	ed := m.checkEditor(L)
	L.Push(lua.LBool(ed.CanUndo()))
	return 1
}

// ed:can_redo() -> bool
func (m *hostModule) canRedo(L *lua.LState) int {
	ed := m.checkEditor(L)
	L.Push(lua.LBool(ed.CanRedo()))
	return 1
}

// ed:group(name, fn)
// Edits made inside fn become one history entry. An error raised by fn
// discards the group and is re-raised.
func (m *hostModule) group(L *lua.LState) int {
	ed := m.checkEditor(L)
	name := L.CheckString(2)
	fn := L.CheckFunction(3)

	err := ed.Transaction(name, func() error {
		return L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
	})
	if err != nil {
		L.RaiseError("group %s: %v", name, err)
	}
	return 0
}

// ed:edit{doc=, description=, undo=fn, redo=fn [, apply=fn] [, significant=bool]}
func (m *hostModule) edit(L *lua.LState) int {
	ed := m.checkEditor(L)
	tbl := L.CheckTable(2)

	docID := ed.FormID()
	if v, ok := L.GetField(tbl, "doc").(lua.LString); ok {
		docID = string(v)
	}
	desc := "Script edit"
	if v, ok := L.GetField(tbl, "description").(lua.LString); ok {
		desc = string(v)
	}
	undo, ok := L.GetField(tbl, "undo").(*lua.LFunction)
	if !ok {
		L.ArgError(2, "undo function required")
		return 0
	}
	redo, ok := L.GetField(tbl, "redo").(*lua.LFunction)
	if !ok {
		L.ArgError(2, "redo function required")
		return 0
	}
	apply, _ := L.GetField(tbl, "apply").(*lua.LFunction)

	e := NewScriptEdit(m.state, docID, desc, apply, undo, redo)
	if v := L.GetField(tbl, "significant"); v != lua.LNil {
		e.SetSignificant(lua.LVAsBool(v))
	}

	if err := ed.Execute(e); err != nil {
		L.RaiseError("edit: %v", err)
	}
	return 0
}

// ed:close()
func (m *hostModule) closeEditor(L *lua.LState) int {
	ed := m.checkEditor(L)
	if err := ed.Close(); err != nil {
		L.RaiseError("close: %v", err)
	}
	return 0
}
