package coordinator

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/formedit/internal/engine/history"
	"github.com/dshills/formedit/internal/event"
	"github.com/dshills/formedit/internal/event/events"
	"github.com/dshills/formedit/internal/event/topic"
)

const eventSource = "coordinator"

// Coordinator tracks the histories of open editor views and reconciles them
// after every undo and redo. It implements history.Notifier.
type Coordinator struct {
	mu      sync.RWMutex
	editors map[string]*history.History
	order   []string

	dispatching atomic.Bool

	logger Logger
	bus    event.Bus
}

// New creates a coordinator with no registered editors.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		editors: make(map[string]*history.History),
		logger:  nopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewEditorID returns a fresh editor identifier.
func NewEditorID() string {
	return uuid.NewString()
}

// NewHistory creates a history with a fresh editor id, wired to this
// coordinator, and registers it.
func (c *Coordinator) NewHistory(opts ...history.Option) (*history.History, error) {
	id := NewEditorID()
	opts = append(opts, history.WithEditorID(id))
	h := history.New(opts...)
	if err := c.Register(id, h); err != nil {
		return nil, err
	}
	return h, nil
}

// Register adds a history under id and makes the coordinator its notifier.
func (c *Coordinator) Register(id string, h *history.History) error {
	if id == "" {
		return ErrInvalidEditorID
	}
	if h == nil {
		return fmt.Errorf("register %s: nil history", id)
	}
	if h.EditorID() != id {
		return fmt.Errorf("register %s: %w (history has %q)", id, ErrEditorIDMismatch, h.EditorID())
	}

	c.mu.Lock()
	if _, exists := c.editors[id]; exists {
		c.mu.Unlock()
		return fmt.Errorf("register %s: %w", id, ErrEditorExists)
	}
	c.editors[id] = h
	c.order = append(c.order, id)
	c.mu.Unlock()

	h.SetNotifier(c)
	publish(c, events.TopicEditorRegistered, events.EditorLifecycle{EditorID: id})
	return nil
}

// Unregister removes the history registered under id. The history is not
// closed; that is the editor's job.
func (c *Coordinator) Unregister(id string) error {
	c.mu.Lock()
	h, ok := c.editors[id]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("unregister %s: %w", id, ErrEditorNotFound)
	}
	delete(c.editors, id)
	c.order = slices.DeleteFunc(c.order, func(s string) bool { return s == id })
	c.mu.Unlock()

	h.SetNotifier(nil)
	publish(c, events.TopicEditorUnregistered, events.EditorLifecycle{EditorID: id})
	return nil
}

// History returns the history registered under id.
func (c *Coordinator) History(id string) (*history.History, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.editors[id]
	return h, ok
}

// Editors returns the registered editor ids in registration order.
func (c *Coordinator) Editors() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.order)
}

// Len returns the number of registered editors.
func (c *Coordinator) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.editors)
}

// SetCapacity applies a new capacity to every registered history and
// returns the number of histories changed.
func (c *Coordinator) SetCapacity(capacity int) int {
	hs := c.siblings("")
	for _, s := range hs {
		s.h.SetCapacity(capacity)
	}
	publish(c, events.TopicHistoryCapacityChanged, events.CapacityChanged{Capacity: capacity, Editors: len(hs)})
	return len(hs)
}

// NotifyUndo reconciles the other histories after sourceID undid edit.
// A sibling that follows in lock-step locks only the same-document entries
// the source history does not also hold, not every other entry.
func (c *Coordinator) NotifyUndo(sourceID string, edit history.Edit) {
	c.notify(events.DirectionUndo, sourceID, edit)
}

// NotifyRedo reconciles the other histories after sourceID redid edit.
func (c *Coordinator) NotifyRedo(sourceID string, edit history.Edit) {
	c.notify(events.DirectionRedo, sourceID, edit)
}

type editorEntry struct {
	id string
	h  *history.History
}

// siblings returns every registered history except the one under exclude.
func (c *Coordinator) siblings(exclude string) []editorEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]editorEntry, 0, len(c.order))
	for _, id := range c.order {
		if id == exclude {
			continue
		}
		out = append(out, editorEntry{id: id, h: c.editors[id]})
	}
	return out
}

func (c *Coordinator) notify(dir events.Direction, sourceID string, edit history.Edit) {
	if edit == nil {
		return
	}
	if !c.dispatching.CompareAndSwap(false, true) {
		c.logger.Debug("dropping nested %s notification from editor %s", dir, sourceID)
		return
	}
	defer c.dispatching.Store(false)

	source, ok := c.History(sourceID)
	if !ok {
		c.logger.Debug("%s notification from unregistered editor %s", dir, sourceID)
	}

	changed := events.HistoryChanged{
		EditorID:    sourceID,
		DocumentID:  edit.DocumentID(),
		Description: edit.Description(),
	}
	if source != nil {
		changed.NextAddIndex = source.NextAddIndex()
	}
	if dir == events.DirectionUndo {
		publish(c, events.TopicHistoryUndone, changed)
	} else {
		publish(c, events.TopicHistoryRedone, changed)
	}

	for _, sib := range c.siblings(sourceID) {
		if sib.h == source {
			continue
		}
		c.reconcile(dir, sourceID, source, sib, edit)
	}
}

// reconcile brings one sibling history in line with the source. It never
// panics and never returns an error.
func (c *Coordinator) reconcile(dir events.Direction, sourceID string, source *history.History, sib editorEntry, edit history.Edit) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("reconciling editor %s after %s in %s panicked: %v", sib.id, dir, sourceID, r)
		}
	}()

	docID := edit.DocumentID()
	h := sib.h

	var target history.Edit
	if dir == events.DirectionUndo {
		target = h.EditToBeUndone()
	} else {
		target = h.EditToBeRedone()
	}

	if target != nil && history.SameEdit(target, edit) && !isLocked(target) {
		var err error
		if dir == events.DirectionUndo {
			err = h.UndoCursor()
		} else {
			err = h.RedoCursor()
		}
		if err == nil {
			// Entries the source never recorded are stale now.
			locked := h.LockDocument(docID, func(e history.Edit) bool {
				return source != nil && source.Contains(e)
			})
			publish(c, events.TopicHistorySynced, events.HistorySynced{
				Direction:      dir,
				SourceEditorID: sourceID,
				EditorID:       sib.id,
				DocumentID:     docID,
				NextAddIndex:   h.NextAddIndex(),
				Locked:         locked,
			})
			return
		}
		c.logger.Warn("editor %s could not follow %s of %q: %v", sib.id, dir, edit.Description(), err)
	}

	locked := h.LockDocument(docID, nil)
	if locked == 0 {
		return
	}
	c.logger.Debug("locked %d entries of document %s in editor %s", locked, docID, sib.id)
	publish(c, events.TopicHistoryLocked, events.HistoryLocked{
		Direction:      dir,
		SourceEditorID: sourceID,
		EditorID:       sib.id,
		DocumentID:     docID,
		Locked:         locked,
	})
}

func isLocked(e history.Edit) bool {
	l, ok := e.(interface{ Locked() bool })
	return ok && l.Locked()
}

// publish sends an event if a bus is configured. Bus failures are logged.
func publish[T any](c *Coordinator, t topic.Topic, payload T) {
	if c.bus == nil {
		return
	}
	if err := c.bus.Publish(context.Background(), event.NewEvent(t, payload, eventSource)); err != nil {
		c.logger.Warn("publishing %s: %v", t, err)
	}
}
