// Package app wires the plugin subsystem into the host lifecycle.
//
// A host creates an App, calls Register once at startup and then wraps
// every command it runs in Dispatch:
//
//	PluginRegistrationInit
//	PluginRegistered(name)   once per loaded plugin
//	PluginRegistrationEnd
//	CliCommandExecutionInit
//	CliCommandExecutionRun   {command, args}
//	<command runs>
//	CliCommandExecutionEnd
//
// Each event is broadcast to completion before the next one is sent.
package app

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dshills/backpack/internal/config"
	"github.com/dshills/backpack/internal/plugin"
	"github.com/dshills/backpack/internal/plugin/api"
)

// App owns the loaded plugins and the machinery that runs them.
type App struct {
	mu sync.RWMutex

	cfg         config.Config
	logger      zerolog.Logger
	console     *api.Console
	metrics     *plugin.Metrics
	loader      *plugin.Loader
	engine      *plugin.Engine
	broadcaster *plugin.Broadcaster

	plugins    []*plugin.Plugin
	registered bool
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger handed to every component.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithConsole sets where script output goes. Defaults to stdout/stderr.
func WithConsole(console *api.Console) Option {
	return func(a *App) {
		a.console = console
	}
}

// WithMetrics sets the metrics sink. Defaults to a fresh one.
func WithMetrics(m *plugin.Metrics) Option {
	return func(a *App) {
		a.metrics = m
	}
}

// New validates cfg and builds the loader, engine and broadcaster.
func New(cfg config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}

	a := &App{
		cfg:    cfg,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.console == nil {
		a.console = api.NewConsole(os.Stdout, os.Stderr, cfg.NoColor)
	}
	if a.metrics == nil {
		a.metrics = plugin.NewMetrics()
	}

	registry, err := api.DefaultRegistry(a.console, cfg.HTTPTimeout.Std())
	if err != nil {
		return nil, &InitError{Component: "capability registry", Err: err}
	}

	loaderOpts := []plugin.LoaderOption{
		plugin.WithLogger(a.logger),
		plugin.WithLoaderMetrics(a.metrics),
	}
	if cfg.PluginRoot != "" {
		loaderOpts = append(loaderOpts, plugin.WithRoot(cfg.PluginRoot))
	}
	a.loader, err = plugin.NewLoader(loaderOpts...)
	if err != nil {
		return nil, &InitError{Component: "plugin loader", Err: err}
	}

	a.engine = plugin.NewEngine(registry,
		plugin.WithTimeout(cfg.ScriptTimeout.Std()),
		plugin.WithEngineLogger(a.logger),
		plugin.WithEngineMetrics(a.metrics),
	)
	a.broadcaster = plugin.NewBroadcaster(a.engine, a.logger)

	return a, nil
}

// Register discovers plugins and announces them. PluginRegistrationInit
// is sent before discovery, so no plugin ever receives it.
func (a *App) Register(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.registered {
		return ErrAlreadyRegistered
	}

	a.broadcaster.Broadcast(ctx, a.plugins, plugin.PluginRegistrationInit{})

	plugins, err := a.loader.Discover()
	if err != nil {
		return fmt.Errorf("discovering plugins: %w", err)
	}
	a.plugins = plugins
	a.registered = true

	for _, p := range plugins {
		a.broadcaster.Broadcast(ctx, plugins, plugin.PluginRegistered{Name: p.Name()})
	}
	a.broadcaster.Broadcast(ctx, plugins, plugin.PluginRegistrationEnd{})

	a.logger.Info().
		Str("root", a.loader.Root()).
		Int("loaded", len(plugins)).
		Int("skipped", a.loader.Skipped()).
		Msg("plugins registered")
	return nil
}

// Dispatch brackets fn with the command lifecycle events. End is sent
// even when fn fails; fn's error is returned afterwards.
func (a *App) Dispatch(ctx context.Context, command string, args []string, fn func(context.Context) error) error {
	plugins, err := a.registeredPlugins()
	if err != nil {
		return err
	}

	a.broadcaster.Broadcast(ctx, plugins, plugin.CliCommandExecutionInit{})
	a.broadcaster.Broadcast(ctx, plugins, plugin.CliCommandExecutionRun{Command: command, Args: args})

	var runErr error
	if fn != nil {
		runErr = fn(ctx)
	}

	a.broadcaster.Broadcast(ctx, plugins, plugin.CliCommandExecutionEnd{})
	return runErr
}

// Emit broadcasts a single event to the registered plugins.
func (a *App) Emit(ctx context.Context, event plugin.Event) error {
	plugins, err := a.registeredPlugins()
	if err != nil {
		return err
	}
	a.broadcaster.Broadcast(ctx, plugins, event)
	return nil
}

// Plugins returns a copy of the registered plugin list.
func (a *App) Plugins() []*plugin.Plugin {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]*plugin.Plugin, len(a.plugins))
	copy(out, a.plugins)
	return out
}

// Root returns the plugin discovery directory.
func (a *App) Root() string {
	return a.loader.Root()
}

// Metrics returns the metrics sink.
func (a *App) Metrics() *plugin.Metrics {
	return a.metrics
}

// Close flushes metrics to the configured textfile, if any.
func (a *App) Close() error {
	if a.cfg.MetricsTextfile == "" {
		return nil
	}
	if err := a.metrics.WriteTextfile(a.cfg.MetricsTextfile); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

func (a *App) registeredPlugins() ([]*plugin.Plugin, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if !a.registered {
		return nil, ErrNotRegistered
	}
	return a.plugins, nil
}
