package cmd

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/dedene/imgpreview-cli/internal/actions"
	"github.com/dedene/imgpreview-cli/internal/config"
	"github.com/dedene/imgpreview-cli/internal/outfmt"
	"github.com/dedene/imgpreview-cli/internal/page"
	"github.com/dedene/imgpreview-cli/internal/preview"
	"github.com/dedene/imgpreview-cli/internal/render"
	"github.com/dedene/imgpreview-cli/internal/source"
	"github.com/dedene/imgpreview-cli/internal/ui"
)

// RenderFlags are shared by every command that renders a preview.
// Defaults are empty; the cascade fills them from config, then hardcoded values.
type RenderFlags struct {
	Output    string `help:"Save the rendered preview as PNG" short:"o" name:"output"`
	MaxWidth  int    `help:"Maximum display width in pixels" name:"max-width"`
	MaxHeight int    `help:"Maximum display height in pixels" name:"max-height"`
	Filter    string `help:"Scaling filter (nearest,approx,bilinear,catmullrom)" name:"filter"`
	Preview   *bool  `help:"Show inline terminal preview" name:"preview" negatable:""`
	Copy      bool   `help:"Copy the saved file path to clipboard" name:"copy" short:"c"`
	Open      bool   `help:"Open the saved file in the default viewer" name:"open"`
}

// renderJob is one invocation of the preview pipeline.
type renderJob struct {
	// Probe reports a pre-existing result at mount. May be nil.
	Probe page.Probe
	// Files is the user's selection; only the first is rendered.
	Files []string
}

// renderOutput is the JSON shape printed after a render.
type renderOutput struct {
	Rendered bool `json:"rendered"`
	*render.Result
	Output string `json:"output,omitempty"`
}

// effectiveBounds returns: explicit flags > config > 500x500.
func (f *RenderFlags) effectiveBounds(cfg *config.Config) (render.Size, error) {
	if f.MaxWidth < 0 || f.MaxHeight < 0 {
		return render.Size{}, fmt.Errorf("invalid bounds %dx%d: must be positive", f.MaxWidth, f.MaxHeight)
	}

	w, h := cfg.Bounds()
	if f.MaxWidth > 0 {
		w = f.MaxWidth
	}

	if f.MaxHeight > 0 {
		h = f.MaxHeight
	}

	return render.Size{W: w, H: h}, nil
}

// effectiveFilter returns: explicit flag > config filter > catmullrom.
func (f *RenderFlags) effectiveFilter(cfg *config.Config) string {
	if f.Filter != "" {
		return f.Filter
	}

	if cfg != nil {
		return cfg.EffectiveFilter()
	}

	return config.DefaultFilter
}

// effectiveCopy returns: explicit --copy flag > config auto_copy > false.
func (f *RenderFlags) effectiveCopy(cfg *config.Config) bool {
	if f.Copy {
		return true
	}

	if cfg != nil && cfg.AutoCopy != nil {
		return *cfg.AutoCopy
	}

	return false
}

// effectiveOpen returns: explicit --open flag > config auto_open > false.
func (f *RenderFlags) effectiveOpen(cfg *config.Config) bool {
	if f.Open {
		return true
	}

	if cfg != nil && cfg.AutoOpen != nil {
		return *cfg.AutoOpen
	}

	return false
}

// shouldPreview determines if inline preview should be shown.
// Cascade: explicit flag > config preview > true (default ON for TTY).
// Always false when stderr is not a TTY or --no-input is set.
func shouldPreview(flag *bool, cfg *config.Config, root *RootFlags) bool {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return false
	}

	if root != nil && root.NoInput {
		return false
	}

	if flag != nil {
		return *flag
	}

	if cfg != nil && cfg.Preview != nil {
		return *cfg.Preview
	}

	return true
}

// runRender mounts a renderer, feeds it the job and reports the surviving load.
func runRender(ctx context.Context, root *RootFlags, flags *RenderFlags, job renderJob) error {
	cfg := config.FromContext(ctx)

	loader := source.LoaderFromContext(ctx)
	if loader == nil {
		return errors.New("image loader not found in context")
	}

	bounds, err := flags.effectiveBounds(cfg)
	if err != nil {
		return &ExitError{Code: ExitUsage, Err: err}
	}

	scaler, err := render.Interpolator(flags.effectiveFilter(cfg))
	if err != nil {
		return &ExitError{Code: ExitUsage, Err: err}
	}

	canvas := render.NewCanvas(scaler)
	r := render.New(render.Options{
		Surface:  canvas,
		Opener:   loader,
		Registry: loader.Registry(),
		Bounds:   bounds,
		Logger:   slog.Default(),
	})
	defer r.Close()

	last := r.Mount(ctx, job.Probe)

	if len(job.Files) > 0 {
		payloads, err := source.PayloadsFromFiles(job.Files[:1])
		if err != nil {
			return &ExitError{Code: ExitPreview, Err: err}
		}

		if ld := r.OnFileSelected(ctx, payloads); ld != nil {
			last = ld
		}
	}

	if last == nil {
		return reportNothing(ctx)
	}

	res, err := last.Wait(ctx)
	if err != nil {
		return &ExitError{Code: ExitPreview, Err: fmt.Errorf("rendering preview: %w", err)}
	}

	img := canvas.Snapshot()

	if shouldPreview(flags.Preview, cfg, root) {
		_ = preview.Show(ctx, img, preview.Options{Writer: ui.FromContext(ctx).Err().Writer()})
	}

	name := res.Source
	if len(job.Files) > 0 {
		name = job.Files[0]
	}

	out, err := flags.save(img, name, cfg)
	if err != nil {
		return err
	}

	if err := reportResult(ctx, res, out); err != nil {
		return err
	}

	flags.runActions(ctx, out, cfg)

	return nil
}

// save writes the rendered surface when requested. Copy and open without
// an explicit --output save to a temp file so there is something to act on.
func (f *RenderFlags) save(img *image.RGBA, name string, cfg *config.Config) (string, error) {
	dest := f.Output
	if dest == "" {
		if !f.effectiveCopy(cfg) && !f.effectiveOpen(cfg) {
			return "", nil
		}

		dir, err := os.MkdirTemp("", "imgpreview-")
		if err != nil {
			return "", fmt.Errorf("creating temp dir: %w", err)
		}

		dest = filepath.Join(dir, actions.AutoFilename(name))
	}

	if err := actions.SaveImage(img, dest); err != nil {
		return "", err
	}

	return dest, nil
}

// runActions fires post-render actions (clipboard, viewer).
// Errors are non-fatal warnings to stderr.
func (f *RenderFlags) runActions(ctx context.Context, path string, cfg *config.Config) {
	if path == "" {
		return
	}

	u := ui.FromContext(ctx)

	if f.effectiveCopy(cfg) {
		if err := actions.CopyToClipboard(path); err != nil {
			u.Err().Warnf("clipboard: %v", err)
		}
	}

	if f.effectiveOpen(cfg) {
		if err := actions.OpenFile(path); err != nil {
			u.Err().Warnf("open: %v", err)
		}
	}
}

func reportNothing(ctx context.Context) error {
	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(os.Stdout, renderOutput{Rendered: false})
	}

	if outfmt.IsPlain(ctx) {
		return nil
	}

	ui.FromContext(ctx).Err().Println("Nothing to preview")

	return nil
}

func reportResult(ctx context.Context, res render.Result, out string) error {
	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(os.Stdout, renderOutput{Rendered: true, Result: &res, Output: out})
	}

	if outfmt.IsPlain(ctx) {
		fmt.Fprintln(os.Stdout, res.Display.String())

		return nil
	}

	rows := [][]string{
		{"source", res.Source},
		{"natural", res.Natural.String()},
		{"display", res.Display.String()},
		{"scaled by", res.Axis.String()},
	}
	if out != "" {
		rows = append(rows, []string{"saved", out})
	}

	u := ui.FromContext(ctx)
	fmt.Fprintln(os.Stdout, ui.RenderTable([]string{"FIELD", "VALUE"}, rows, u.Out().ColorEnabled()))

	return nil
}
