package form

import (
	"fmt"
	"maps"
	"slices"
	"sort"
)

// Component is a named bean on a form.
type Component struct {
	Name       string
	Type       string
	properties map[string]string
}

// NewComponent creates a component with no properties.
func NewComponent(name, typ string) *Component {
	return &Component{
		Name:       name,
		Type:       typ,
		properties: make(map[string]string),
	}
}

// Property returns the value of a property.
func (c *Component) Property(name string) (string, bool) {
	v, ok := c.properties[name]
	return v, ok
}

// Properties returns a copy of all properties.
func (c *Component) Properties() map[string]string {
	return maps.Clone(c.properties)
}

func (c *Component) setProperty(name, value string) {
	c.properties[name] = value
}

func (c *Component) deleteProperty(name string) {
	delete(c.properties, name)
}

// Form is a document: an ordered list of components plus embedded forms.
type Form struct {
	ID   string
	Name string

	components []*Component
	nested     []*Form
}

// New creates an empty form.
func New(id, name string) *Form {
	return &Form{ID: id, Name: name}
}

// Component returns the component with the given name.
func (f *Form) Component(name string) (*Component, bool) {
	i := f.indexOf(name)
	if i < 0 {
		return nil, false
	}
	return f.components[i], true
}

// Components returns the components in order.
func (f *Form) Components() []*Component {
	return slices.Clone(f.components)
}

// ComponentNames returns the component names in order.
func (f *Form) ComponentNames() []string {
	names := make([]string, len(f.components))
	for i, c := range f.components {
		names[i] = c.Name
	}
	return names
}

func (f *Form) indexOf(name string) int {
	return slices.IndexFunc(f.components, func(c *Component) bool { return c.Name == name })
}

func (f *Form) insert(index int, c *Component) error {
	if f.indexOf(c.Name) >= 0 {
		return fmt.Errorf("%s in form %s: %w", c.Name, f.ID, ErrComponentExists)
	}
	if index < 0 || index > len(f.components) {
		index = len(f.components)
	}
	f.components = slices.Insert(f.components, index, c)
	return nil
}

func (f *Form) remove(name string) (*Component, int, error) {
	i := f.indexOf(name)
	if i < 0 {
		return nil, -1, fmt.Errorf("%s in form %s: %w", name, f.ID, ErrComponentNotFound)
	}
	c := f.components[i]
	f.components = slices.Delete(f.components, i, i+1)
	return c, i, nil
}

// Embed adds child as a nested form. The child is shared, not copied.
func (f *Form) Embed(child *Form) error {
	if child == f || child.Contains(f.ID) {
		return fmt.Errorf("embed %s into %s: %w", child.ID, f.ID, ErrEmbedCycle)
	}
	if !slices.Contains(f.nested, child) {
		f.nested = append(f.nested, child)
	}
	return nil
}

// Nested returns the directly embedded forms.
func (f *Form) Nested() []*Form {
	return slices.Clone(f.nested)
}

// Find returns the form with the given id among f and its nested forms.
func (f *Form) Find(id string) (*Form, bool) {
	if f.ID == id {
		return f, true
	}
	for _, n := range f.nested {
		if found, ok := n.Find(id); ok {
			return found, true
		}
	}
	return nil, false
}

// Contains reports whether f or any form nested in it has the given id.
func (f *Form) Contains(id string) bool {
	_, ok := f.Find(id)
	return ok
}

// DocumentIDs returns the ids of f and every nested form, sorted.
func (f *Form) DocumentIDs() []string {
	seen := make(map[string]bool)
	var walk func(*Form)
	walk = func(x *Form) {
		if seen[x.ID] {
			return
		}
		seen[x.ID] = true
		for _, n := range x.nested {
			walk(n)
		}
	}
	walk(f)

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
