package cmd

import (
	"context"
	"errors"
	"strings"

	"github.com/dedene/imgpreview-cli/internal/page"
	"github.com/dedene/imgpreview-cli/internal/source"
)

// ShowCmd previews image files. It is the default command when invoked
// with positional args (default:"withargs" in CLI struct).
type ShowCmd struct {
	Files    []string `arg:"" optional:"" help:"Image files; only the first is previewed"`
	Page     string   `help:"HTML file or URL holding an existing result image" name:"page"`
	ResultID string   `help:"Element id of the result image on --page" name:"result-id" default:"result"`

	RenderFlags `embed:""`
}

// Run executes the show command. A page, when given, is probed first; a
// file selection then supersedes whatever the page produced.
func (c *ShowCmd) Run(ctx context.Context, root *RootFlags) error {
	if len(c.Files) == 0 && c.Page == "" {
		return &ExitError{
			Code: ExitUsage,
			Err:  errors.New("provide image files or --page; run 'imgpreview --help' for usage"),
		}
	}

	return runRender(ctx, root, &c.RenderFlags, renderJob{
		Probe: c.probe(ctx),
		Files: c.Files,
	})
}

func (c *ShowCmd) probe(ctx context.Context) page.Probe {
	if c.Page == "" {
		return nil
	}

	id := c.ResultID
	if id == "" {
		id = page.DefaultResultID
	}

	if strings.HasPrefix(c.Page, "http://") || strings.HasPrefix(c.Page, "https://") {
		return page.URLProbe(source.LoaderFromContext(ctx).HTTPClient(), c.Page, id)
	}

	return page.FileProbe(c.Page, id)
}
