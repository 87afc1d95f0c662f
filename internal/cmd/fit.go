package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/dedene/imgpreview-cli/internal/config"
	"github.com/dedene/imgpreview-cli/internal/outfmt"
	"github.com/dedene/imgpreview-cli/internal/render"
	"github.com/dedene/imgpreview-cli/internal/ui"
)

// FitCmd prints the scale-to-fit display size for a natural size without
// decoding anything.
type FitCmd struct {
	Width     int `arg:"" help:"Natural width in pixels"`
	Height    int `arg:"" help:"Natural height in pixels"`
	MaxWidth  int `help:"Maximum display width in pixels" name:"max-width"`
	MaxHeight int `help:"Maximum display height in pixels" name:"max-height"`
}

// Run executes the fit command.
func (c *FitCmd) Run(ctx context.Context) error {
	if c.Width <= 0 || c.Height <= 0 {
		return &ExitError{
			Code: ExitUsage,
			Err:  fmt.Errorf("invalid size %dx%d: must be positive", c.Width, c.Height),
		}
	}

	flags := RenderFlags{MaxWidth: c.MaxWidth, MaxHeight: c.MaxHeight}

	bounds, err := flags.effectiveBounds(config.FromContext(ctx))
	if err != nil {
		return &ExitError{Code: ExitUsage, Err: err}
	}

	natural := render.Size{W: c.Width, H: c.Height}
	display, axis := render.ScaleToFit(natural, bounds)

	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(os.Stdout, map[string]any{
			"natural":   natural,
			"bounds":    bounds,
			"display":   display,
			"scaled_by": axis,
		})
	}

	if outfmt.IsPlain(ctx) {
		fmt.Fprintln(os.Stdout, display.String())

		return nil
	}

	rows := [][]string{
		{"natural", natural.String()},
		{"bounds", bounds.String()},
		{"display", display.String()},
		{"scaled by", axis.String()},
	}
	fmt.Fprintln(os.Stdout, ui.RenderTable([]string{"FIELD", "VALUE"}, rows, ui.FromContext(ctx).Out().ColorEnabled()))

	return nil
}
