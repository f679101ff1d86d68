package form

import (
	"fmt"

	"github.com/dshills/formedit/internal/engine/history"
)

// SetPropertyEdit sets one property of one component.
type SetPropertyEdit struct {
	history.BaseEdit

	form      *Form
	component string
	property  string
	value     string

	old     string
	hadOld  bool
	substep bool
}

// NewSetProperty creates an edit that sets component.property to value.
func NewSetProperty(f *Form, component, property, value string) *SetPropertyEdit {
	return &SetPropertyEdit{
		form:      f,
		component: component,
		property:  property,
		value:     value,
	}
}

// Substep marks the edit insignificant. Undo and redo walk over it.
func (e *SetPropertyEdit) Substep() *SetPropertyEdit {
	e.substep = true
	return e
}

// Apply performs the edit for the first time, capturing the old value.
func (e *SetPropertyEdit) Apply() error {
	c, ok := e.form.Component(e.component)
	if !ok {
		return fmt.Errorf("set %s.%s: %w", e.component, e.property, ErrComponentNotFound)
	}
	e.old, e.hadOld = c.Property(e.property)
	c.setProperty(e.property, e.value)
	return nil
}

func (e *SetPropertyEdit) Undo() error {
	c, ok := e.form.Component(e.component)
	if !ok {
		return fmt.Errorf("undo set %s.%s: %w", e.component, e.property, ErrComponentNotFound)
	}
	if e.hadOld {
		c.setProperty(e.property, e.old)
	} else {
		c.deleteProperty(e.property)
	}
	e.MarkUndone()
	return nil
}

func (e *SetPropertyEdit) Redo() error {
	c, ok := e.form.Component(e.component)
	if !ok {
		return fmt.Errorf("redo set %s.%s: %w", e.component, e.property, ErrComponentNotFound)
	}
	c.setProperty(e.property, e.value)
	e.MarkRedone()
	return nil
}

func (e *SetPropertyEdit) IsSignificant() bool { return !e.substep }
func (e *SetPropertyEdit) DocumentID() string  { return e.form.ID }

func (e *SetPropertyEdit) Description() string {
	return fmt.Sprintf("Set %s.%s = %q", e.component, e.property, e.value)
}

// AddComponentEdit adds a component to a form.
type AddComponentEdit struct {
	history.BaseEdit

	form  *Form
	comp  *Component
	index int
}

// NewAddComponent creates an edit that appends a component of the given type.
func NewAddComponent(f *Form, name, typ string) *AddComponentEdit {
	return &AddComponentEdit{form: f, comp: NewComponent(name, typ), index: -1}
}

func (e *AddComponentEdit) Apply() error {
	if err := e.form.insert(e.index, e.comp); err != nil {
		return err
	}
	e.index = e.form.indexOf(e.comp.Name)
	return nil
}

func (e *AddComponentEdit) Undo() error {
	if _, _, err := e.form.remove(e.comp.Name); err != nil {
		return fmt.Errorf("undo add: %w", err)
	}
	e.MarkUndone()
	return nil
}

func (e *AddComponentEdit) Redo() error {
	if err := e.form.insert(e.index, e.comp); err != nil {
		return fmt.Errorf("redo add: %w", err)
	}
	e.MarkRedone()
	return nil
}

func (e *AddComponentEdit) DocumentID() string { return e.form.ID }

func (e *AddComponentEdit) Description() string {
	return fmt.Sprintf("Add %s %s", e.comp.Type, e.comp.Name)
}

// RemoveComponentEdit removes a component from a form.
type RemoveComponentEdit struct {
	history.BaseEdit

	form  *Form
	name  string
	comp  *Component
	index int
}

// NewRemoveComponent creates an edit that removes the named component.
func NewRemoveComponent(f *Form, name string) *RemoveComponentEdit {
	return &RemoveComponentEdit{form: f, name: name, index: -1}
}

func (e *RemoveComponentEdit) Apply() error {
	c, i, err := e.form.remove(e.name)
	if err != nil {
		return err
	}
	e.comp, e.index = c, i
	return nil
}

func (e *RemoveComponentEdit) Undo() error {
	if e.comp == nil {
		return fmt.Errorf("undo remove %s: %w", e.name, ErrComponentNotFound)
	}
	if err := e.form.insert(e.index, e.comp); err != nil {
		return fmt.Errorf("undo remove: %w", err)
	}
	e.MarkUndone()
	return nil
}

func (e *RemoveComponentEdit) Redo() error {
	if _, _, err := e.form.remove(e.name); err != nil {
		return fmt.Errorf("redo remove: %w", err)
	}
	e.MarkRedone()
	return nil
}

func (e *RemoveComponentEdit) DocumentID() string { return e.form.ID }

func (e *RemoveComponentEdit) Description() string {
	return "Remove " + e.name
}

var (
	_ history.Edit    = (*SetPropertyEdit)(nil)
	_ history.Applier = (*SetPropertyEdit)(nil)
	_ history.Edit    = (*AddComponentEdit)(nil)
	_ history.Applier = (*AddComponentEdit)(nil)
	_ history.Edit    = (*RemoveComponentEdit)(nil)
	_ history.Applier = (*RemoveComponentEdit)(nil)
)
