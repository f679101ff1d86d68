package form

import (
	"fmt"
	"sort"
	"sync"
)

// Workspace owns every form that can be opened in an editor.
type Workspace struct {
	mu    sync.RWMutex
	forms map[string]*Form
}

// NewWorkspace creates an empty workspace.
func NewWorkspace() *Workspace {
	return &Workspace{forms: make(map[string]*Form)}
}

// Create adds a new empty form.
func (w *Workspace) Create(id, name string) (*Form, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.forms[id]; ok {
		return nil, fmt.Errorf("%s: %w", id, ErrFormExists)
	}
	f := New(id, name)
	w.forms[id] = f
	return f, nil
}

// Get returns a form by id.
func (w *Workspace) Get(id string) (*Form, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	f, ok := w.forms[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrFormNotFound)
	}
	return f, nil
}

// Embed nests the form childID inside parentID.
func (w *Workspace) Embed(parentID, childID string) error {
	parent, err := w.Get(parentID)
	if err != nil {
		return err
	}
	child, err := w.Get(childID)
	if err != nil {
		return err
	}
	return parent.Embed(child)
}

// IDs returns all form ids, sorted.
func (w *Workspace) IDs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	ids := make([]string, 0, len(w.forms))
	for id := range w.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
