// Package coordinator keeps the histories of all open editor views in step.
//
// The same document, typically a nested form, can be open in several editor
// views at once. Each view owns a history.History, and a shared edit is
// wrapped once per history. When one view applies an undo or redo, the
// Coordinator visits every other registered history:
//
//   - if that history's next undo (or redo) target is the same edit, its
//     cursor is moved with UndoCursor (RedoCursor) without running the edit
//     again, and its entries for the document that the source view never
//     recorded are locked;
//   - otherwise every entry for the edit's document is locked, because the
//     view no longer matches the document's real state.
//
// Notification is best effort. Failures while reconciling a sibling are
// logged and never reach the view that performed the undo or redo, and a
// notification raised while another one is being dispatched is dropped.
package coordinator
