package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
)

// Loader discovers plugins under a single root directory.
type Loader struct {
	root    string
	logger  zerolog.Logger
	metrics *Metrics

	skipped int
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithRoot sets the plugin root directory.
func WithRoot(root string) LoaderOption {
	return func(l *Loader) {
		l.root = root
	}
}

// WithLogger sets the logger used for discovery diagnostics.
func WithLogger(logger zerolog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithLoaderMetrics records discovery counts into m.
func WithLoaderMetrics(m *Metrics) LoaderOption {
	return func(l *Loader) {
		l.metrics = m
	}
}

// NewLoader creates a loader. Without WithRoot the default root is used,
// which fails only when the user config directory cannot be resolved.
func NewLoader(opts ...LoaderOption) (*Loader, error) {
	l := &Loader{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(l)
	}

	if l.root == "" {
		root, err := DefaultRoot()
		if err != nil {
			return nil, err
		}
		l.root = root
	}

	return l, nil
}

// DefaultRoot returns <user config dir>/github-bot/plugins.
func DefaultRoot() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoConfigDir, err)
	}
	return filepath.Join(dir, AppName, PluginsDir), nil
}

// Root returns the directory scanned by Discover.
func (l *Loader) Root() string {
	return l.root
}

// Skipped returns how many directories the last Discover rejected.
func (l *Loader) Skipped() int {
	return l.skipped
}

// Discover loads every plugin directory directly under the root.
// A missing root yields no plugins. Directories that fail to load are
// logged and skipped. Results are sorted by manifest name, then directory.
func (l *Loader) Discover() ([]*Plugin, error) {
	l.skipped = 0

	entries, err := os.ReadDir(l.root)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Debug().Str("root", l.root).Msg("plugin directory not found, no plugins loaded")
			l.metrics.observeDiscovery(0, 0)
			return []*Plugin{}, nil
		}
		return nil, fmt.Errorf("reading plugin directory %s: %w", l.root, err)
	}

	l.logger.Debug().Str("root", l.root).Msg("scanning for plugins")

	plugins := make([]*Plugin, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(l.root, entry.Name())
		if !isDir(entry, path) {
			continue
		}

		p, err := FromDir(path)
		if err != nil {
			l.skipped++
			l.logger.Warn().Err(err).Str("dir", path).Msg("failed to load plugin")
			continue
		}

		l.logger.Debug().Str("plugin", p.Name()).Str("dir", path).Msg("loaded plugin")
		plugins = append(plugins, p)
	}

	sort.SliceStable(plugins, func(i, j int) bool {
		if plugins[i].Name() != plugins[j].Name() {
			return plugins[i].Name() < plugins[j].Name()
		}
		return plugins[i].Dir < plugins[j].Dir
	})

	for i := 1; i < len(plugins); i++ {
		if plugins[i].Name() == plugins[i-1].Name() {
			l.logger.Warn().
				Str("plugin", plugins[i].Name()).
				Str("dir", plugins[i].Dir).
				Str("other", plugins[i-1].Dir).
				Msg("duplicate plugin name, both will run")
		}
	}

	l.metrics.observeDiscovery(len(plugins), l.skipped)
	return plugins, nil
}

// isDir follows symlinks so a linked plugin directory is still discovered.
func isDir(entry os.DirEntry, path string) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
