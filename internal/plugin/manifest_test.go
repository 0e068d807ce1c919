package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestFilename)

	content := `
name = "notify"
description = "Desktop notifications"
author = "Jane Dev"
homepage = "https://example.com"
repo = "https://example.com/notify.git"
license = "MIT"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write test manifest: %v", err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}

	if m.Name != "notify" {
		t.Errorf("Name = %q, want %q", m.Name, "notify")
	}
	if m.Description != "Desktop notifications" {
		t.Errorf("Description = %q, want %q", m.Description, "Desktop notifications")
	}
	if m.Author != "Jane Dev" {
		t.Errorf("Author = %q, want %q", m.Author, "Jane Dev")
	}
	if m.Homepage == nil || *m.Homepage != "https://example.com" {
		t.Errorf("Homepage = %v, want https://example.com", m.Homepage)
	}
	if m.Repo == nil || *m.Repo != "https://example.com/notify.git" {
		t.Errorf("Repo = %v, want https://example.com/notify.git", m.Repo)
	}
	if m.License == nil || *m.License != "MIT" {
		t.Errorf("License = %v, want MIT", m.License)
	}
}

func TestParseManifestOptionalFieldsAbsent(t *testing.T) {
	m, err := ParseManifest("manifest.toml", []byte(`
name = "echo"
description = "Echoes events"
author = "someone"
`))
	if err != nil {
		t.Fatalf("ParseManifest() error = %v", err)
	}
	if m.Homepage != nil || m.Repo != nil || m.License != nil {
		t.Errorf("optional fields = %v %v %v, want all absent", m.Homepage, m.Repo, m.License)
	}
}

func TestParseManifestEmptyRequiredFieldAccepted(t *testing.T) {
	m, err := ParseManifest("manifest.toml", []byte(`
name = "echo"
description = ""
author = "someone"
`))
	if err != nil {
		t.Fatalf("ParseManifest() error = %v", err)
	}
	if m.Description != "" {
		t.Errorf("Description = %q, want empty", m.Description)
	}
}

func TestParseManifestUnknownKeysIgnored(t *testing.T) {
	_, err := ParseManifest("manifest.toml", []byte(`
name = "echo"
description = "d"
author = "a"
version = "9.9.9"
`))
	if err != nil {
		t.Errorf("ParseManifest() with extra key error = %v", err)
	}
}

func TestParseManifestMissingField(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"no name", "description = \"d\"\nauthor = \"a\"\n", "name"},
		{"no description", "name = \"n\"\nauthor = \"a\"\n", "description"},
		{"no author", "name = \"n\"\ndescription = \"d\"\n", "author"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest("/plugins/x/manifest.toml", []byte(tt.content))
			if err == nil {
				t.Fatal("ParseManifest() should fail")
			}
			if !errors.Is(err, ErrMissingField) {
				t.Errorf("ParseManifest() error = %v, want ErrMissingField", err)
			}
			var perr *ManifestParseError
			if !errors.As(err, &perr) {
				t.Fatalf("ParseManifest() error type = %T, want *ManifestParseError", err)
			}
			if perr.Path != "/plugins/x/manifest.toml" {
				t.Errorf("Path = %q, want /plugins/x/manifest.toml", perr.Path)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name field %q", err, tt.field)
			}
		})
	}
}

func TestParseManifestInvalidTOML(t *testing.T) {
	_, err := ParseManifest("bad.toml", []byte(`name = "unterminated`))
	if err == nil {
		t.Fatal("ParseManifest() should fail on invalid TOML")
	}
	var perr *ManifestParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error type = %T, want *ManifestParseError", err)
	}
	if !strings.HasPrefix(err.Error(), "failed to parse TOML manifest: bad.toml") {
		t.Errorf("error = %q", err)
	}
}

func TestParseManifestWrongType(t *testing.T) {
	_, err := ParseManifest("manifest.toml", []byte("name = 3\ndescription = \"d\"\nauthor = \"a\"\n"))
	if err == nil {
		t.Fatal("ParseManifest() should fail when name is not a string")
	}
}

func TestLoadManifestMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestFilename)

	_, err := LoadManifest(path)
	if err == nil {
		t.Fatal("LoadManifest() should fail for a missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadManifest() error = %v, want os.ErrNotExist", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error %q does not name the path", err)
	}
}

func TestManifestString(t *testing.T) {
	m := Manifest{Name: "echo", Author: "someone"}
	if got := m.String(); got != "echo (someone)" {
		t.Errorf("String() = %q, want %q", got, "echo (someone)")
	}
}
