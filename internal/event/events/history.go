package events

import "github.com/dshills/formedit/internal/event/topic"

// History event topics.
const (
	// TopicEditorRegistered is published when an editor view opens.
	TopicEditorRegistered topic.Topic = "editor.registered"

	// TopicEditorUnregistered is published when an editor view closes.
	TopicEditorUnregistered topic.Topic = "editor.unregistered"

	// TopicHistoryUndone is published after an editor applied an undo.
	TopicHistoryUndone topic.Topic = "history.undone"

	// TopicHistoryRedone is published after an editor applied a redo.
	TopicHistoryRedone topic.Topic = "history.redone"

	// TopicHistorySynced is published when a sibling cursor followed an
	// undo or redo without applying it.
	TopicHistorySynced topic.Topic = "history.synced"

	// TopicHistoryLocked is published when sibling entries were locked.
	TopicHistoryLocked topic.Topic = "history.locked"

	// TopicHistoryCapacityChanged is published when the configured capacity
	// was applied to the open editors.
	TopicHistoryCapacityChanged topic.Topic = "history.capacity.changed"
)

// Direction tells whether a notification came from an undo or a redo.
type Direction string

// Directions.
const (
	DirectionUndo Direction = "undo"
	DirectionRedo Direction = "redo"
)

// EditorLifecycle is the payload for editor registration events.
type EditorLifecycle struct {
	EditorID string
}

// HistoryChanged is the payload for undo/redo events.
type HistoryChanged struct {
	EditorID     string
	DocumentID   string
	Description  string
	NextAddIndex int
}

// HistorySynced is the payload for TopicHistorySynced.
type HistorySynced struct {
	Direction      Direction
	SourceEditorID string
	EditorID       string
	DocumentID     string
	NextAddIndex   int
	Locked         int
}

// HistoryLocked is the payload for TopicHistoryLocked.
type HistoryLocked struct {
	Direction      Direction
	SourceEditorID string
	EditorID       string
	DocumentID     string
	Locked         int
}

// CapacityChanged is the payload for TopicHistoryCapacityChanged.
type CapacityChanged struct {
	Capacity int
	Editors  int
}
