package lua

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// Default limits for Lua state.
const (
	DefaultExecutionTimeout = 5 * time.Second
	DefaultOperationLimit   = 1_000_000
)

// State wraps a sandboxed gopher-lua state.
type State struct {
	L *lua.LState

	mu sync.Mutex

	executionTimeout time.Duration
	operationLimit   int64
	operations       atomic.Int64

	// running is set while a run holds mu, so script edits invoked from
	// inside that run do not try to take mu again.
	running atomic.Bool

	closed bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout sets the timeout for a single run. Zero disables it.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.executionTimeout = d
	}
}

// WithOperationLimit sets the maximum host API calls per run. Zero disables it.
func WithOperationLimit(limit int64) StateOption {
	return func(s *State) {
		s.operationLimit = limit
	}
}

// NewState creates a new sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	s := &State{
		executionTimeout: DefaultExecutionTimeout,
		operationLimit:   DefaultOperationLimit,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(s.L)
	return s
}

// openSafeLibraries opens only safe Lua standard libraries.
// io, os, debug and package stay closed.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// DoString executes a Lua chunk.
func (s *State) DoString(ctx context.Context, code string) error {
	return s.run(ctx, func() error { return s.L.DoString(code) })
}

// DoFile executes a Lua file.
func (s *State) DoFile(ctx context.Context, path string) error {
	return s.run(ctx, func() error { return s.L.DoFile(path) })
}

func (s *State) run(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	if s.executionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.executionTimeout)
		defer cancel()
	}

	s.operations.Store(0)
	s.running.Store(true)
	defer s.running.Store(false)

	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	err := doWithRecovery(fn)
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrExecutionTimeout, err)
	}
	if s.operationLimit > 0 && s.operations.Load() > s.operationLimit {
		return fmt.Errorf("%w: %v", ErrOperationLimit, err)
	}
	return err
}

// doWithRecovery executes a function with panic recovery.
func doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// invoke calls f with the arguments, taking the state lock unless a run is
// already in progress.
func (s *State) invoke(f *lua.LFunction, args ...lua.LValue) error {
	if !s.running.Load() {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	if s.closed {
		return ErrStateClosed
	}
	if f == nil {
		return errors.New("lua function released")
	}

	return doWithRecovery(func() error {
		return s.L.CallByParam(lua.P{Fn: f, NRet: 0, Protect: true}, args...)
	})
}

// countOperation records one host API call and raises a Lua error when the
// limit is exceeded.
func (s *State) countOperation(L *lua.LState) {
	if s.operationLimit <= 0 {
		return
	}
	if s.operations.Add(1) > s.operationLimit {
		L.RaiseError("%s (%d)", ErrOperationLimit, s.operationLimit)
	}
}

// GetGlobal returns a global variable value.
func (s *State) GetGlobal(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases the Lua state. Later runs return ErrStateClosed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}
