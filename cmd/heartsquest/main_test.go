package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "heartsquest version "))
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", "--variant", "linear")
	require.NoError(t, err)
	assert.Contains(t, out, "Content is valid!")

	broken := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("title: Broken\nstart: nowhere\nsteps:\n  - id: a\n    kind: screen\n    next: b\n"), 0644))

	out, err = execute(t, "validate", broken)
	assert.ErrorContains(t, err, "validation failed")
	assert.Contains(t, out, "start: start refers to unknown step")
}

func TestGraphAndSessionCommands(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "graph", "--variant", "map", "--sessions-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "map{{\"map\"}}")

	out, err = execute(t, "session", "ls", "--sessions-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found.")

	_, err = execute(t, "graph", "--sessions-dir", dir, "--session", "ghost")
	assert.ErrorContains(t, err, "error loading session 'ghost'")

	_, err = execute(t, "session", "rm", "--sessions-dir", dir)
	assert.Error(t, err, "rm needs ids or --all")
}
