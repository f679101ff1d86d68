package history

// DefaultCapacity is the number of entries a History keeps when no capacity
// is configured.
const DefaultCapacity = 100

// Notifier is told about every applied undo or redo so that other views of
// the same documents can reconcile.
type Notifier interface {
	NotifyUndo(editorID string, edit Edit)
	NotifyRedo(editorID string, edit Edit)
}

// Option configures a History during creation.
type Option func(*History)

// WithCapacity sets the maximum number of entries.
func WithCapacity(capacity int) Option {
	return func(h *History) {
		if capacity > 0 {
			h.capacity = capacity
		}
	}
}

// WithEditorID sets the identifier passed to the Notifier.
func WithEditorID(id string) Option {
	return func(h *History) {
		h.editorID = id
	}
}

// WithNotifier sets the Notifier informed after Undo and Redo.
func WithNotifier(n Notifier) Option {
	return func(h *History) {
		h.notifier = n
	}
}
