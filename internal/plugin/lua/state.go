package lua

import (
	"context"
	"errors"
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// State is a sandboxed Lua state for a single script invocation.
//
// IMPORTANT: gopher-lua's LState is not goroutine-safe. A State must be
// created, used and closed by one goroutine. Callers that run scripts
// concurrently create one State each.
type State struct {
	L *lua.LState

	ctx    context.Context
	bridge *Bridge
	closed bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithContext attaches ctx to the state. When ctx is done, a running
// script is interrupted and DoString returns ErrExecutionCancelled.
func WithContext(ctx context.Context) StateOption {
	return func(s *State) {
		s.ctx = ctx
	}
}

// NewState creates a new sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	state := &State{}
	for _, opt := range opts {
		opt(state)
	}

	// Create Lua state with limited libraries
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true, // We'll open selectively
	})
	openSafeLibraries(L)
	installSandbox(L)

	if state.ctx != nil {
		L.SetContext(state.ctx)
	}

	state.L = L
	state.bridge = NewBridge(L)
	return state
}

// DoString compiles and runs code as a chunk called name.
// Execution is synchronous: the call blocks until the chunk completes,
// raises an error, or the state's context ends.
func (s *State) DoString(name, code string) error {
	if s.closed {
		return ErrStateClosed
	}

	return s.doWithRecovery(func() error {
		fn, err := s.L.Load(strings.NewReader(code), name)
		if err != nil {
			return err
		}
		s.L.Push(fn)
		return s.L.PCall(0, lua.MultRet, nil)
	})
}

// doWithRecovery executes fn with panic recovery and maps context
// cancellation to ErrExecutionCancelled.
func (s *State) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
		if err != nil && s.ctx != nil && s.ctx.Err() != nil {
			err = errors.Join(ErrExecutionCancelled, s.ctx.Err())
		}
	}()
	return fn()
}

// SetGlobal sets a global variable.
func (s *State) SetGlobal(name string, value lua.LValue) {
	if s.closed {
		return
	}
	s.L.SetGlobal(name, value)
}

// getGlobal returns a global variable value.
func (s *State) getGlobal(name string) lua.LValue {
	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// registerFunc registers a Go function as a global Lua function.
func (s *State) registerFunc(name string, fn lua.LGFunction) {
	if s.closed {
		return
	}
	s.L.SetGlobal(name, s.L.NewFunction(fn))
}

// Bridge returns the value converter bound to this state.
func (s *State) Bridge() *Bridge {
	return s.bridge
}

// LuaState returns the underlying gopher-lua state for module registration.
func (s *State) LuaState() *lua.LState {
	return s.L
}

// isClosed returns true if the state has been closed.
func (s *State) isClosed() bool {
	return s.closed
}

// Close releases all resources associated with the Lua state.
func (s *State) Close() {
	if s.closed {
		return
	}
	s.L.Close()
	s.closed = true
}
