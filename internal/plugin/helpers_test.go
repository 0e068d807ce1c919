package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// divideScript fails the way an arithmetic fault would. Lua yields inf for
// 1/0 instead of raising, so the script checks for it and raises itself.
const divideScript = `
local x = 1 / 0
if x == 1/0 or x == -1/0 or x ~= x then
  error("division by zero")
end
print("unreachable")
`

// writePlugin creates root/dir with a manifest for name and the given script.
func writePlugin(t testing.TB, root, dir, name, script string) string {
	t.Helper()
	path := filepath.Join(root, dir)
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	manifest := fmt.Sprintf("name = %q\ndescription = \"test plugin\"\nauthor = \"tester\"\n", name)
	if err := os.WriteFile(filepath.Join(path, ManifestFilename), []byte(manifest), 0o644); err != nil {
		t.Fatalf("WriteFile(manifest) error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(path, ScriptFilename), []byte(script), 0o644); err != nil {
		t.Fatalf("WriteFile(script) error = %v", err)
	}
	return path
}
