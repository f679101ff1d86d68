// Package app wires formedit together: configuration, logging, the event
// bus, the editor coordinator, the form workspace and the script runtime.
//
// Editor operations are expected to run on one goroutine. Configuration
// reloads arrive from the file watcher on another goroutine; they are
// queued and applied at the start of the next editor operation.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/dshills/formedit/internal/config"
	"github.com/dshills/formedit/internal/config/watcher"
	"github.com/dshills/formedit/internal/engine/coordinator"
	"github.com/dshills/formedit/internal/engine/history"
	"github.com/dshills/formedit/internal/event"
	"github.com/dshills/formedit/internal/event/topic"
	"github.com/dshills/formedit/internal/form"
	"github.com/dshills/formedit/internal/inspect"
	"github.com/dshills/formedit/internal/plugin/lua"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the TOML or YAML configuration file. Optional.
	ConfigPath string

	// LogLevel overrides logging.level from the configuration when set.
	LogLevel string

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer

	// Watch reloads the configuration file when it changes.
	Watch bool
}

// Application owns every long-lived component.
type Application struct {
	mu sync.RWMutex

	cfg       *config.Config
	logger    *Logger
	bus       event.Bus
	coord     *coordinator.Coordinator
	workspace *form.Workspace
	script    *lua.State
	watcher   *watcher.Watcher

	editors map[string]*Editor
	order   []string

	// pending holds a reloaded configuration not yet applied.
	pending atomic.Pointer[config.Config]

	opts   Options
	closed bool
}

// New loads configuration and builds the application.
func New(opts Options) (*Application, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, NewOperationError("load config", opts.ConfigPath, err)
	}
	return NewWithConfig(cfg, opts)
}

// NewWithConfig builds the application from an already loaded configuration.
func NewWithConfig(cfg *config.Config, opts Options) (*Application, error) {
	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logger := NewLogger(LoggerConfig{
		Level:  ParseLogLevel(level),
		Output: opts.LogOutput,
		Prefix: "formedit",
	})

	a := &Application{
		cfg:       cfg,
		logger:    logger,
		workspace: form.NewWorkspace(),
		editors:   make(map[string]*Editor),
		opts:      opts,
	}

	a.bus = event.NewBus(event.WithErrorHandler(func(err error) {
		logger.WithComponent("bus").Warn("%v", err)
	}))
	if _, err := a.bus.SubscribeFunc(topic.Topic("**"), a.logEvent); err != nil {
		return nil, NewOperationError("subscribe", "**", err)
	}

	a.coord = coordinator.New(
		coordinator.WithLogger(logger.WithComponent("coordinator")),
		coordinator.WithBus(a.bus),
	)

	a.script = lua.NewState(
		lua.WithExecutionTimeout(cfg.Script.Timeout),
		lua.WithOperationLimit(int64(cfg.Script.OperationLimit)),
	)
	if err := lua.RegisterHost(a.script, scriptHost{a}); err != nil {
		return nil, NewOperationError("register script host", "", err)
	}

	if opts.Watch && opts.ConfigPath != "" {
		w, err := watcher.New(opts.ConfigPath, a.onConfigChange,
			watcher.WithErrorHandler(func(err error) {
				logger.WithComponent("watcher").Warn("%v", err)
			}))
		if err != nil {
			a.script.Close()
			return nil, NewOperationError("watch config", opts.ConfigPath, err)
		}
		a.watcher = w
	}

	logger.Debug("application ready (capacity=%d)", cfg.History.Capacity)
	return a, nil
}

// Config returns the configuration currently in effect.
func (a *Application) Config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// Logger returns the application logger.
func (a *Application) Logger() *Logger { return a.logger }

// Bus returns the event bus.
func (a *Application) Bus() event.Bus { return a.bus }

// Coordinator returns the editor coordinator.
func (a *Application) Coordinator() *coordinator.Coordinator { return a.coord }

// Workspace returns the form workspace.
func (a *Application) Workspace() *form.Workspace { return a.workspace }

// CreateForm adds an empty form to the workspace.
func (a *Application) CreateForm(id, name string) error {
	if _, err := a.workspace.Create(id, name); err != nil {
		return NewOperationError("create form", id, err)
	}
	return nil
}

// EmbedForm nests form childID inside parentID.
func (a *Application) EmbedForm(parentID, childID string) error {
	if err := a.workspace.Embed(parentID, childID); err != nil {
		return NewOperationError("embed form", parentID, err)
	}
	return nil
}

// OpenEditor opens a new editor view on a top-level form.
func (a *Application) OpenEditor(formID string) (*Editor, error) {
	if err := a.sync(); err != nil {
		return nil, err
	}

	f, err := a.workspace.Get(formID)
	if err != nil {
		return nil, NewOperationError("open editor", formID, err)
	}

	h, err := a.coord.NewHistory(history.WithCapacity(a.Config().History.Capacity))
	if err != nil {
		return nil, NewOperationError("open editor", formID, err)
	}

	ed := &Editor{id: h.EditorID(), root: f, history: h, app: a}

	a.mu.Lock()
	a.editors[ed.id] = ed
	a.order = append(a.order, ed.id)
	a.mu.Unlock()

	a.logger.WithField("editor", ed.id).Info("opened form %s", formID)
	return ed, nil
}

// Editor returns an open editor by id.
func (a *Application) Editor(id string) (*Editor, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ed, ok := a.editors[id]
	return ed, ok
}

// Editors returns the open editors in the order they were opened.
func (a *Application) Editors() []*Editor {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*Editor, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.editors[id])
	}
	return out
}

// CloseEditor unregisters and closes an editor view.
func (a *Application) CloseEditor(id string) error {
	a.mu.Lock()
	ed, ok := a.editors[id]
	if !ok {
		a.mu.Unlock()
		return NewOperationError("close editor", id, ErrEditorNotFound)
	}
	delete(a.editors, id)
	a.order = slices.DeleteFunc(a.order, func(s string) bool { return s == id })
	a.mu.Unlock()

	if err := a.coord.Unregister(id); err != nil {
		a.logger.Warn("unregistering editor %s: %v", id, err)
	}
	ed.history.Close()
	a.logger.WithField("editor", id).Info("closed form %s", ed.root.ID)
	return nil
}

// viewers returns the open editors other than skip whose form tree
// contains docID.
func (a *Application) viewers(docID string, skip *Editor) []*Editor {
	var out []*Editor
	for _, ed := range a.Editors() {
		if ed != skip && ed.root.Contains(docID) {
			out = append(out, ed)
		}
	}
	return out
}

// RunScript executes a Lua script file against this application.
func (a *Application) RunScript(ctx context.Context, path string) error {
	if err := a.script.DoFile(ctx, path); err != nil {
		return NewOperationError("run script", path, err)
	}
	return nil
}

// RunScriptString executes Lua source against this application.
func (a *Application) RunScriptString(ctx context.Context, code string) error {
	if err := a.script.DoString(ctx, code); err != nil {
		return NewOperationError("run script", "", err)
	}
	return nil
}

// Render writes the introspection table of every open editor.
func (a *Application) Render(w io.Writer) error {
	eds := a.Editors()
	srcs := make([]inspect.Source, len(eds))
	for i, ed := range eds {
		srcs[i] = ed.history
	}
	return inspect.RenderAll(w, srcs...)
}

// onConfigChange runs on the watcher goroutine.
func (a *Application) onConfigChange(ev watcher.Event) {
	log := a.logger.WithComponent("config")
	if ev.Op == watcher.OpRemove {
		log.Info("%s removed; keeping current configuration", ev.Path)
		return
	}

	cfg, err := config.Load(a.opts.ConfigPath)
	if err != nil {
		log.Warn("reload %s: %v", ev.Path, err)
		return
	}
	if a.opts.LogLevel == "" {
		a.logger.SetLevel(ParseLogLevel(cfg.Logging.Level))
	}
	a.pending.Store(cfg)
	log.Info("reloaded %s", ev.Path)
}

// sync applies a pending configuration reload. It runs on the editor
// goroutine at the start of every editor operation.
func (a *Application) sync() error {
	a.mu.RLock()
	closed := a.closed
	a.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	cfg := a.pending.Swap(nil)
	if cfg == nil {
		return nil
	}
	a.applyConfig(cfg)
	return nil
}

// applyConfig makes cfg current and resizes every open history.
func (a *Application) applyConfig(cfg *config.Config) {
	a.mu.Lock()
	old := a.cfg
	a.cfg = cfg
	a.mu.Unlock()

	if old.History.Capacity != cfg.History.Capacity {
		n := a.coord.SetCapacity(cfg.History.Capacity)
		a.logger.Info("history capacity %d -> %d applied to %d editors",
			old.History.Capacity, cfg.History.Capacity, n)
	}
}

// ReloadConfig queues cfg as if the watcher had loaded it.
func (a *Application) ReloadConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return NewOperationError("reload config", "", err)
	}
	a.pending.Store(cfg)
	return nil
}

func (a *Application) logEvent(_ context.Context, ev any) error {
	tp, ok := ev.(event.TopicProvider)
	if !ok {
		return nil
	}
	log := a.logger.WithComponent("event")
	if mp, ok := ev.(event.MetadataProvider); ok {
		md := mp.EventMetadata()
		log = log.WithField("source", md.Source).WithField("id", md.ID)
	}
	log.Debug("%s", tp.EventTopic())
	return nil
}

// Close closes every editor, the watcher and the script runtime.
func (a *Application) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	ids := slices.Clone(a.order)
	a.mu.Unlock()

	for _, id := range ids {
		if err := a.CloseEditor(id); err != nil {
			a.logger.Warn("%v", err)
		}
	}

	var errs []error
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing watcher: %w", err))
		}
	}
	if err := a.script.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing script runtime: %w", err))
	}
	return errors.Join(errs...)
}
