// Package preview renders inline terminal previews of painted surfaces.
package preview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"

	termimg "github.com/blacktop/go-termimg"
	"golang.org/x/term"
)

const (
	minPreviewWidth = 16
	maxPreviewWidth = 50
)

// Options configures image preview rendering.
type Options struct {
	// Width in character cells. 0 = auto-detect from terminal.
	Width int
	// Writer receives rendered escape sequences. Typically os.Stderr.
	Writer io.Writer
}

// Show renders img to opts.Writer scaled to fit the cell width.
// Returns nil on any error: a preview never fails a command.
func Show(ctx context.Context, img image.Image, opts Options) error {
	if img == nil || img.Bounds().Empty() || opts.Writer == nil {
		return nil
	}

	if ctx.Err() != nil {
		return nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		slog.Debug("encoding preview", "error", err)

		return nil
	}

	timg, err := termimg.From(&buf)
	if err != nil {
		slog.Debug("loading preview", "error", err)

		return nil
	}

	rendered, err := timg.Width(cellWidth(opts.Width)).Scale(termimg.ScaleFit).Render()
	if err != nil {
		slog.Debug("rendering preview", "error", err)

		return nil
	}

	fmt.Fprintln(opts.Writer, rendered)

	return nil
}

// cellWidth resolves the preview width: explicit, else a third of the
// terminal, clamped to [16, 50].
func cellWidth(width int) int {
	if width > 0 {
		return width
	}

	w, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil || w <= 0 {
		return 40
	}

	return max(minPreviewWidth, min(maxPreviewWidth, w/3))
}
