package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Environment variables read by ApplyEnv.
const (
	EnvLogLevel      = "BACKPACK_LOG_LEVEL"
	EnvNoColor       = "BACKPACK_NO_COLOR"
	EnvPluginDir     = "BACKPACK_PLUGIN_DIR"
	EnvScriptTimeout = "BACKPACK_SCRIPT_TIMEOUT"

	// EnvNoColorStandard is the cross-tool convention from no-color.org.
	EnvNoColorStandard = "NO_COLOR"
)

// Log output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

var validLevels = []string{"trace", "debug", "info", "warn", "error", "disabled"}

// Config is the resolved host configuration.
type Config struct {
	// Quiet suppresses informational log output.
	Quiet bool `toml:"quiet"`
	// NoColor disables ANSI styling in script output and console logs.
	NoColor bool `toml:"no_color"`
	// LogLevel is one of trace, debug, info, warn, error or disabled.
	LogLevel string `toml:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string `toml:"log_format"`
	// PluginRoot overrides the discovery directory. Empty means the
	// per-user default.
	PluginRoot string `toml:"plugin_dir"`
	// ScriptTimeout bounds one script invocation. Zero disables it.
	ScriptTimeout Duration `toml:"script_timeout"`
	// HTTPTimeout bounds one outbound request made by a script.
	HTTPTimeout Duration `toml:"http_timeout"`
	// MetricsTextfile, when set, receives a Prometheus text dump on exit.
	MetricsTextfile string `toml:"metrics_textfile"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:      "info",
		LogFormat:     FormatText,
		ScriptTimeout: Duration(30 * time.Second),
		HTTPTimeout:   Duration(30 * time.Second),
	}
}

// Load reads the TOML file at path over the defaults. A missing file is
// not an error; the defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		perr := &ParseError{Path: path, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return Config{}, perr
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with values from the environment. lookup has the
// signature of os.LookupEnv so tests can supply their own.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		c.LogLevel = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvNoColorStandard); ok && v != "" {
		c.NoColor = true
	}
	if v, ok := lookup(EnvNoColor); ok {
		if b, ok := parseBool(v); ok {
			c.NoColor = b
		}
	}
	if v, ok := lookup(EnvPluginDir); ok && strings.TrimSpace(v) != "" {
		c.PluginRoot = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvScriptTimeout); ok && strings.TrimSpace(v) != "" {
		d, err := ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvScriptTimeout, err)
		}
		c.ScriptTimeout = d
	}
	return nil
}

// Validate reports the first setting holding an unusable value.
func (c Config) Validate() error {
	level := strings.ToLower(strings.TrimSpace(c.LogLevel))
	if !slices.Contains(validLevels, level) {
		return &ValidationError{
			Key:     "log_level",
			Message: "must be one of " + strings.Join(validLevels, ", "),
			Value:   c.LogLevel,
		}
	}
	switch c.LogFormat {
	case FormatText, FormatJSON:
	default:
		return &ValidationError{Key: "log_format", Message: "must be text or json", Value: c.LogFormat}
	}
	if c.ScriptTimeout < 0 {
		return &ValidationError{Key: "script_timeout", Message: "must not be negative", Value: c.ScriptTimeout}
	}
	if c.HTTPTimeout <= 0 {
		return &ValidationError{Key: "http_timeout", Message: "must be positive", Value: c.HTTPTimeout}
	}
	return nil
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
