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

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[cache]",
		`root = "` + filepath.Join(dir, "caches") + `"`,
		`store_timeout = "1s"`,
		"",
		"[log]",
		`level = "off"`,
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestShowRequiresUserID(t *testing.T) {
	_, err := runCommand(t, "show")
	assert.Error(t, err)
}

func TestShowEmptyCache(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCommand(t, "--config", cfgPath, "show", "user-1")
	require.NoError(t, err)
	assert.Contains(t, out, "no cached timeline")
}

func TestClearAndRemoveUnknownUser(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCommand(t, "--config", cfgPath, "clear", "user-1")
	require.NoError(t, err)
	assert.Contains(t, out, "cleared")

	out, err = runCommand(t, "--config", cfgPath, "remove", "user-1")
	require.NoError(t, err)
	assert.Contains(t, out, "removed")
}

func TestRejectsUnknownCommand(t *testing.T) {
	_, err := runCommand(t, "frobnicate")
	assert.Error(t, err)
}
