package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/backpack/internal/plugin/api"
	plua "github.com/dshills/backpack/internal/plugin/lua"
)

// EventVariable is the global through which scripts read the current event.
const EventVariable = "event_data"

// DefaultScriptTimeout bounds one script invocation unless overridden.
const DefaultScriptTimeout = 30 * time.Second

// Outcome is the result of running one plugin for one event.
// It is logged by the broadcaster and never persisted.
type Outcome struct {
	Plugin   string
	Event    string
	Err      error
	Duration time.Duration
}

// OK reports whether the script ran to completion.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Engine runs plugin scripts. Every Run builds a new Lua state, injects
// the registry's modules, binds the event and evaluates the script read
// fresh from disk. No interpreter state survives between runs.
type Engine struct {
	registry *api.Registry
	timeout  time.Duration
	logger   zerolog.Logger
	metrics  *Metrics
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithTimeout sets the per-invocation deadline. Zero disables it, in which
// case a script that never finishes blocks its invocation forever.
func WithTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithEngineLogger sets the logger used for per-invocation debug output.
func WithEngineLogger(logger zerolog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithEngineMetrics records every outcome into m.
func WithEngineMetrics(m *Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine creates an engine exposing the modules in registry to scripts.
func NewEngine(registry *api.Registry, opts ...EngineOption) *Engine {
	e := &Engine{
		registry: registry,
		timeout:  DefaultScriptTimeout,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes p's script for event. Failures are returned in the
// Outcome, never raised.
func (e *Engine) Run(ctx context.Context, p *Plugin, event Event) Outcome {
	start := time.Now()
	out := Outcome{Plugin: p.Name(), Event: kindOf(event)}
	out.Err = e.run(ctx, p, event)
	out.Duration = time.Since(start)

	e.metrics.observeInvocation(out)
	return out
}

func (e *Engine) run(ctx context.Context, p *Plugin, event Event) error {
	name := p.Name()

	payload, err := EncodeEvent(event)
	if err != nil {
		return fmt.Errorf("failed to convert event data for plugin '%s': %w", name, err)
	}

	if e.logger.GetLevel() <= zerolog.DebugLevel {
		if raw, err := json.Marshal(event); err == nil {
			e.logger.Debug().Str("plugin", name).RawJSON("event", raw).Msg("executing plugin")
		}
	}

	source, err := os.ReadFile(p.ScriptPath)
	if err != nil {
		return fmt.Errorf("failed to read Lua script: %s: %w", p.ScriptPath, err)
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	state := plua.NewState(plua.WithContext(ctx))
	defer state.Close()

	if err := e.registry.InjectAll(state.LuaState()); err != nil {
		return fmt.Errorf("preparing sandbox for plugin '%s': %w", name, err)
	}
	state.SetGlobal(EventVariable, state.Bridge().ToLuaValue(payload))

	if err := state.DoString(name, string(source)); err != nil {
		if e.timeout > 0 && errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %v: %w", ErrScriptTimeout, e.timeout, err)
		}
		return &ScriptError{Plugin: name, Err: err}
	}

	e.logger.Trace().Str("plugin", name).Msg("plugin finished")
	return nil
}

func kindOf(event Event) string {
	if event == nil {
		return "unknown"
	}
	return event.Kind()
}
