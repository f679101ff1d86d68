package history

import "reflect"

// Proxy wraps a shared Edit for one History and adds a lock flag local to
// that History. Locking a proxy never affects other proxies of the same edit.
type Proxy struct {
	edit   Edit
	locked bool
}

// NewProxy wraps edit in a new unlocked proxy.
func NewProxy(edit Edit) *Proxy {
	return &Proxy{edit: edit}
}

// Edit returns the wrapped edit.
func (p *Proxy) Edit() Edit {
	return p.edit
}

// Unwrap returns the wrapped edit.
func (p *Proxy) Unwrap() Edit {
	return p.edit
}

// Locked reports whether the proxy is locked.
func (p *Proxy) Locked() bool {
	return p.locked
}

// Lock sets the lock flag.
func (p *Proxy) Lock(value bool) {
	p.locked = value
}

// Undo delegates to the wrapped edit.
func (p *Proxy) Undo() error {
	return p.edit.Undo()
}

// Redo delegates to the wrapped edit.
func (p *Proxy) Redo() error {
	return p.edit.Redo()
}

// CanUndo returns false when locked, otherwise delegates.
func (p *Proxy) CanUndo() bool {
	if p.locked {
		return false
	}
	return p.edit.CanUndo()
}

// CanRedo returns false when locked, otherwise delegates.
func (p *Proxy) CanRedo() bool {
	if p.locked {
		return false
	}
	return p.edit.CanRedo()
}

// IsSignificant delegates to the wrapped edit.
func (p *Proxy) IsSignificant() bool {
	return p.edit.IsSignificant()
}

// DocumentID delegates to the wrapped edit.
func (p *Proxy) DocumentID() string {
	return p.edit.DocumentID()
}

// Description delegates to the wrapped edit.
func (p *Proxy) Description() string {
	return p.edit.Description()
}

// Die delegates to the wrapped edit.
//
// There is no reference counting: an edit held by two histories dies as soon
// as either of them discards it. Edits must tolerate repeated Die calls.
func (p *Proxy) Die() {
	p.edit.Die()
}

// Unwrap peels every proxy layer off e and returns the underlying edit.
func Unwrap(e Edit) Edit {
	for {
		w, ok := e.(interface{ Unwrap() Edit })
		if !ok {
			return e
		}
		inner := w.Unwrap()
		if inner == nil {
			return e
		}
		e = inner
	}
}

// SameEdit reports whether a and b wrap the identical underlying edit.
// Identity is used, never structural equality, so two distinct edits with
// equal contents are not the same. Only pointer edits have an identity.
func SameEdit(a, b Edit) bool {
	if a == nil || b == nil {
		return false
	}
	ua, ub := Unwrap(a), Unwrap(b)
	ta, tb := reflect.TypeOf(ua), reflect.TypeOf(ub)
	if ta != tb || ta.Kind() != reflect.Pointer {
		return false
	}
	return ua == ub
}
