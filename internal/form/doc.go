// Package form is the in-process form document graph edited by the editor
// views, together with the reversible edits that mutate it.
//
// A Form holds named components with string properties and may embed other
// forms. An embedded form is shared by pointer, so the same nested form can
// appear in several top-level forms and be edited from several views. Each
// form's ID is the document id carried by its edits.
package form
