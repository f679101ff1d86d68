// Package lua runs formedit scripts on a sandboxed gopher-lua runtime.
//
// A State opens only the base, table, string and math libraries and strips
// the loaders that could read files. Each run is bounded by a timeout and by
// an operation limit counted on every call into the host API.
//
// RegisterHost installs the global formedit table:
//
//	formedit.form(id, name)          create a form
//	formedit.embed(parent, child)    nest child inside parent
//	local ed = formedit.open(id)     open an editor view on a form
//
//	ed:id()  ed:form()
//	ed:add(name, type [, form])      add a component
//	ed:remove(name [, form])         remove a component
//	ed:set(comp, prop, value [, form])
//	ed:undo()  ed:redo()             return false when nothing to do
//	ed:can_undo()  ed:can_redo()
//	ed:group(name, fn)               record fn's edits as one entry
//	ed:edit{doc=, description=, undo=fn, redo=fn [, apply=fn] [, significant=bool]}
//	ed:close()
//
// The optional form argument addresses a nested form by id; it defaults to
// the editor's own form.
//
// A State is not safe for concurrent use. Script edits must be undone and
// redone on the goroutine that owns the State.
package lua
