package plugin

import (
	"fmt"
	"os"
	"path/filepath"
)

// On-disk layout constants.
const (
	AppName          = "github-bot"
	PluginsDir       = "plugins"
	ManifestFilename = "manifest.toml"
	ScriptFilename   = "run.lua"
)

// Plugin is a discovered plugin: its manifest plus the location of its script.
// Plugins are created during discovery and shared read-only afterwards.
type Plugin struct {
	Manifest   Manifest
	Dir        string
	ScriptPath string
}

// FromDir loads the plugin rooted at dir.
// The script must exist and the manifest must parse.
func FromDir(dir string) (*Plugin, error) {
	scriptPath := filepath.Join(dir, ScriptFilename)
	if _, err := os.Stat(scriptPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingScript, scriptPath)
	}

	manifest, err := LoadManifest(filepath.Join(dir, ManifestFilename))
	if err != nil {
		return nil, err
	}

	return &Plugin{
		Manifest:   *manifest,
		Dir:        dir,
		ScriptPath: scriptPath,
	}, nil
}

// Name returns the plugin's logical name from its manifest.
func (p *Plugin) Name() string {
	return p.Manifest.Name
}
