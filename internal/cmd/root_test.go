package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeEnv(t *testing.T) {
	t.Helper()

	keepDefaultLogger(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
}

func TestExecute_Fit(t *testing.T) {
	executeEnv(t)

	out := captureStdout(t, func() {
		require.NoError(t, Execute([]string{"--plain", "fit", "1000", "400"}))
	})
	assert.Equal(t, "500x200\n", out)
}

func TestExecute_DefaultShow(t *testing.T) {
	executeEnv(t)
	file := writePNG(t, t.TempDir(), "wide.png", 1000, 400)

	out := captureStdout(t, func() {
		require.NoError(t, Execute([]string{"--plain", "--no-preview", "--max-width", "100", file}))
	})
	assert.Equal(t, "100x40\n", out)
}

func TestExecute_ShowDecodeFailureExitCode(t *testing.T) {
	executeEnv(t)

	err := Execute([]string{"--plain", "show", "--no-preview", "/definitely/missing.png"})
	require.Error(t, err)
	assert.Equal(t, ExitPreview, ExitCode(err))
}

func TestExecute_UnknownFlag(t *testing.T) {
	executeEnv(t)

	err := Execute([]string{"fit", "--bogus"})
	require.Error(t, err)
	assert.Equal(t, ExitUsage, ExitCode(err))
}

func TestExecute_VersionFlag(t *testing.T) {
	executeEnv(t)

	out := captureStdout(t, func() {
		require.NoError(t, Execute([]string{"--version"}))
	})
	assert.Contains(t, out, VersionString())
}

func TestExecute_BadConfigStillRuns(t *testing.T) {
	executeEnv(t)

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "imgpreview"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "imgpreview", "config.json"), []byte("{broken"), 0o600))

	out := captureStdout(t, func() {
		require.NoError(t, Execute([]string{"--json", "version"}))
	})
	assert.Contains(t, out, `"version"`)
}
