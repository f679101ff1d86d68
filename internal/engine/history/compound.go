package history

import (
	"errors"
	"fmt"
)

// CompoundEdit groups several edits into one history entry.
type CompoundEdit struct {
	Name  string
	Edits []Edit
}

// NewCompoundEdit creates a new compound edit.
func NewCompoundEdit(name string, edits ...Edit) *CompoundEdit {
	return &CompoundEdit{
		Name:  name,
		Edits: edits,
	}
}

// Add appends an edit to the compound edit.
func (c *CompoundEdit) Add(e Edit) {
	c.Edits = append(c.Edits, e)
}

// IsEmpty returns true if the compound edit has no edits.
func (c *CompoundEdit) IsEmpty() bool {
	return len(c.Edits) == 0
}

// Undo reverses all edits in reverse order.
func (c *CompoundEdit) Undo() error {
	for i := len(c.Edits) - 1; i >= 0; i-- {
		if err := c.Edits[i].Undo(); err != nil {
			return fmt.Errorf("undo compound edit '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Redo performs all edits in order.
func (c *CompoundEdit) Redo() error {
	for i, e := range c.Edits {
		if err := e.Redo(); err != nil {
			errs := []error{fmt.Errorf("redo compound edit '%s' step %d: %w", c.Name, i, err)}
			// Roll back the steps already redone.
			for j := i - 1; j >= 0; j-- {
				if uerr := c.Edits[j].Undo(); uerr != nil {
					errs = append(errs, fmt.Errorf("roll back step %d: %w", j, uerr))
				}
			}
			return errors.Join(errs...)
		}
	}
	return nil
}

// CanUndo returns true if every child can be undone.
func (c *CompoundEdit) CanUndo() bool {
	if c.IsEmpty() {
		return false
	}
	for _, e := range c.Edits {
		if !e.CanUndo() {
			return false
		}
	}
	return true
}

// CanRedo returns true if every child can be redone.
func (c *CompoundEdit) CanRedo() bool {
	if c.IsEmpty() {
		return false
	}
	for _, e := range c.Edits {
		if !e.CanRedo() {
			return false
		}
	}
	return true
}

// IsSignificant returns true if any child is significant.
func (c *CompoundEdit) IsSignificant() bool {
	for _, e := range c.Edits {
		if e.IsSignificant() {
			return true
		}
	}
	return false
}

// DocumentID returns the document of the first child.
func (c *CompoundEdit) DocumentID() string {
	if c.IsEmpty() {
		return ""
	}
	return c.Edits[0].DocumentID()
}

// Description returns the compound edit's name.
func (c *CompoundEdit) Description() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.Edits) == 1 {
		return c.Edits[0].Description()
	}
	return fmt.Sprintf("%d edits", len(c.Edits))
}

// Die kills every child, newest first.
func (c *CompoundEdit) Die() {
	for i := len(c.Edits) - 1; i >= 0; i-- {
		c.Edits[i].Die()
	}
}

// Apply applies every child that implements Applier.
func (c *CompoundEdit) Apply() error {
	var errs []error
	for i, e := range c.Edits {
		a, ok := e.(Applier)
		if !ok {
			continue
		}
		if err := a.Apply(); err != nil {
			errs = append(errs, fmt.Errorf("step %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
