package plugin

import (
	"errors"
	"fmt"
)

// Plugin system errors.
var (
	// ErrNoConfigDir is returned when the per-user config directory cannot be resolved.
	ErrNoConfigDir = errors.New("could not determine config directory")

	// ErrMissingScript is returned when a plugin directory has no run script.
	ErrMissingScript = errors.New("missing required script")

	// ErrMissingField is returned when a manifest omits a required key.
	ErrMissingField = errors.New("missing required field")

	// ErrUnknownEvent is returned when an event cannot be encoded for the sandbox.
	ErrUnknownEvent = errors.New("unknown event")

	// ErrScriptTimeout is returned when a script exceeds its deadline.
	ErrScriptTimeout = errors.New("script execution timed out")
)

// ManifestParseError describes a manifest document that could not be decoded.
type ManifestParseError struct {
	Path    string
	Message string
	Err     error
}

func (e *ManifestParseError) Error() string {
	return fmt.Sprintf("failed to parse TOML manifest: %s: %s", e.Path, e.Message)
}

func (e *ManifestParseError) Unwrap() error {
	return e.Err
}

// ScriptError is the failure reported for a single plugin invocation.
type ScriptError struct {
	Plugin string
	Err    error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("plugin '%s' script failed during Lua execution: %v", e.Plugin, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
