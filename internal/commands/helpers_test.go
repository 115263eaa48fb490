package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

// runRoot executes a fresh command tree with args. HOME points at a temp dir
// so the user's real configuration is never read or written.
func runRoot(t *testing.T, deps *Dependencies, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var stdout, stderr bytes.Buffer
	deps.Stdout = &stdout
	deps.Stderr = &stderr
	if deps.StdinPiped == nil {
		deps.StdinPiped = func() bool { return false }
	}
	if deps.Interactive == nil {
		deps.Interactive = func() bool { return false }
	}
	if deps.TerminalWidth == nil {
		deps.TerminalWidth = func() int { return 80 }
	}

	cmd := NewRootCmd(deps)
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// writeConfig writes a config file and returns its path
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
