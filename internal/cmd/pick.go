package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/dedene/imgpreview-cli/internal/tui"
)

// errNotInteractive is returned when the picker cannot take input.
var errNotInteractive = errors.New("pick needs an interactive terminal; pass files to 'imgpreview show' instead")

// PickCmd lets the user choose images from a directory, then previews the
// first one chosen.
type PickCmd struct {
	Dir string `arg:"" optional:"" default:"." help:"Directory to scan for images" type:"existingdir"`

	RenderFlags `embed:""`
}

// Run executes the pick command.
func (c *PickCmd) Run(ctx context.Context, root *RootFlags) error {
	if root != nil && root.NoInput {
		return &ExitError{Code: ExitUsage, Err: errNotInteractive}
	}

	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return &ExitError{Code: ExitUsage, Err: errNotInteractive}
	}

	files, err := tui.ScanDir(c.Dir)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no images found in %s", c.Dir)
	}

	p := tea.NewProgram(tui.NewPicker(files), tea.WithOutput(os.Stderr), tea.WithInputTTY(), tea.WithContext(ctx))

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("running picker: %w", err)
	}

	m, ok := final.(tui.Model)
	if !ok || m.Cancelled() {
		return nil
	}

	return runRender(ctx, root, &c.RenderFlags, renderJob{Files: m.Selection()})
}
