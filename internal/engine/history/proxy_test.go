package history

import "testing"

// valueEdit is a non-pointer edit; it has no identity.
type valueEdit struct {
	name string
}

func (valueEdit) Undo() error           { return nil }
func (valueEdit) Redo() error           { return nil }
func (valueEdit) CanUndo() bool         { return true }
func (valueEdit) CanRedo() bool         { return true }
func (valueEdit) IsSignificant() bool   { return true }
func (valueEdit) DocumentID() string    { return "A" }
func (v valueEdit) Description() string { return v.name }
func (valueEdit) Die()                  {}

func TestProxyLockIsLocal(t *testing.T) {
	doc := &testDoc{}
	e := newEdit(doc, "e", 1)
	p1 := NewProxy(e)
	p2 := NewProxy(e)

	p1.Lock(true)

	if p1.CanUndo() || p1.CanRedo() {
		t.Error("locked proxy should refuse undo and redo")
	}
	if !p2.CanUndo() {
		t.Error("lock leaked to another proxy")
	}
	if !e.CanUndo() {
		t.Error("lock leaked to the edit")
	}

	p1.Lock(false)
	if !p1.CanUndo() {
		t.Error("unlocked proxy should delegate")
	}
}

func TestSameEdit(t *testing.T) {
	doc := &testDoc{}
	e := newEdit(doc, "e", 1)
	twin := &testEdit{name: "e", docID: "A", delta: 1, doc: doc}

	tests := []struct {
		name string
		a, b Edit
		want bool
	}{
		{"identical", e, e, true},
		{"proxy and edit", NewProxy(e), e, true},
		{"two proxies", NewProxy(e), NewProxy(e), true},
		{"nested proxies", NewProxy(NewProxy(e)), NewProxy(e), true},
		{"equal contents", e, twin, false},
		{"nil", e, nil, false},
		{"value edits", valueEdit{"v"}, valueEdit{"v"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameEdit(tt.a, tt.b); got != tt.want {
				t.Errorf("SameEdit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAddEditUnwrapsProxy(t *testing.T) {
	doc := &testDoc{}
	e := newEdit(doc, "e", 1)
	h := New()

	h.AddEdit(NewProxy(NewProxy(e)))

	p := h.EditToBeUndone().(*Proxy)
	if p.Edit() != Edit(e) {
		t.Errorf("entry wraps %T, want the bare edit", p.Edit())
	}
}

func TestProxyDieIsNotCounted(t *testing.T) {
	doc := &testDoc{}
	e := newEdit(doc, "e", 1)

	h1 := New()
	h2 := New()
	h1.AddEdit(e)
	h2.AddEdit(e)

	h1.Close()
	h2.Close()

	// Each history releases its own proxy; the shared edit sees both.
	if e.deaths != 2 {
		t.Errorf("deaths = %d, want 2", e.deaths)
	}
	if !e.IsDead() {
		t.Error("edit should be dead")
	}
}

func TestCompoundEdit(t *testing.T) {
	doc := &testDoc{}
	a := newEdit(doc, "a", 1)
	b := newEdit(doc, "b", 2)
	b.insignificant = true
	c := NewCompoundEdit("", a, b)

	if !c.IsSignificant() {
		t.Error("compound with a significant child should be significant")
	}
	if c.DocumentID() != "A" {
		t.Errorf("DocumentID() = %q, want A", c.DocumentID())
	}
	if c.Description() != "2 edits" {
		t.Errorf("Description() = %q", c.Description())
	}
	if err := c.Undo(); err != nil {
		t.Fatal(err)
	}
	if !c.CanRedo() || c.CanUndo() {
		t.Error("compound state should follow its children")
	}
	if err := c.Redo(); err != nil {
		t.Fatal(err)
	}
	if doc.total != 3 {
		t.Errorf("total = %d, want 3", doc.total)
	}

	empty := NewCompoundEdit("empty")
	if empty.CanUndo() || empty.IsSignificant() || empty.DocumentID() != "" {
		t.Error("empty compound should be inert")
	}
}
