package plugin

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Manifest describes a plugin's identity and provenance.
// It is read once from manifest.toml and never mutated.
type Manifest struct {
	Name        string  `toml:"name"`
	Description string  `toml:"description"`
	Author      string  `toml:"author"`
	Homepage    *string `toml:"homepage"`
	Repo        *string `toml:"repo"`
	License     *string `toml:"license"`
}

// rawManifest distinguishes an absent key from an empty string.
type rawManifest struct {
	Name        *string `toml:"name"`
	Description *string `toml:"description"`
	Author      *string `toml:"author"`
	Homepage    *string `toml:"homepage"`
	Repo        *string `toml:"repo"`
	License     *string `toml:"license"`
}

// LoadManifest reads and parses the manifest file at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %s: %w", path, err)
	}
	return ParseManifest(path, data)
}

// ParseManifest decodes a TOML manifest document. The path is only used
// for diagnostics; ParseManifest does no I/O.
func ParseManifest(path string, data []byte) (*Manifest, error) {
	var raw rawManifest
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, &ManifestParseError{Path: path, Message: err.Error(), Err: err}
	}

	required := []struct {
		key string
		val *string
	}{
		{"name", raw.Name},
		{"description", raw.Description},
		{"author", raw.Author},
	}
	for _, f := range required {
		if f.val == nil {
			err := fmt.Errorf("%w `%s`", ErrMissingField, f.key)
			return nil, &ManifestParseError{Path: path, Message: err.Error(), Err: err}
		}
	}

	return &Manifest{
		Name:        *raw.Name,
		Description: *raw.Description,
		Author:      *raw.Author,
		Homepage:    raw.Homepage,
		Repo:        raw.Repo,
		License:     raw.License,
	}, nil
}

// String returns a short description used in diagnostics.
func (m *Manifest) String() string {
	return fmt.Sprintf("%s (%s)", m.Name, m.Author)
}
