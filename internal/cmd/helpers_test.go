package cmd

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dedene/imgpreview-cli/internal/config"
	"github.com/dedene/imgpreview-cli/internal/outfmt"
	"github.com/dedene/imgpreview-cli/internal/source"
)

// captureStdout redirects os.Stdout to a pipe and returns what fn wrote.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	origStdout := os.Stdout
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = origStdout

	buf, _ := io.ReadAll(r)
	_ = r.Close()

	return string(buf)
}

// cmdTestCtx builds the context Execute would hand to a command.
func cmdTestCtx(t *testing.T, mode outfmt.Mode, cfg *config.Config) context.Context {
	t.Helper()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if cfg == nil {
		cfg = &config.Config{}
	}

	ctx := context.Background()
	ctx = outfmt.WithMode(ctx, mode)
	ctx = config.WithConfig(ctx, cfg)
	ctx = source.WithLoader(ctx, source.NewLoader(source.Options{UserAgent: "imgpreview-cli/test"}))

	return ctx
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}

	f, err := os.CreateTemp(t.TempDir(), "*.png")
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)

	return data
}

// writePNG writes a solid w x h PNG into dir and returns its path.
func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, encodePNG(t, w, h), 0o644))

	return path
}

func boolPtr(b bool) *bool { return &b }
