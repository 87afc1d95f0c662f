package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/dedene/imgpreview-cli/internal/config"
	"github.com/dedene/imgpreview-cli/internal/outfmt"
	"github.com/dedene/imgpreview-cli/internal/source"
	"github.com/dedene/imgpreview-cli/internal/ui"
)

// RootFlags are global flags available to all commands.
type RootFlags struct {
	Color   string `help:"Color output: auto|always|never" default:"auto" enum:"auto,always,never"`
	JSON    bool   `help:"JSON output" default:"false"`
	Plain   bool   `help:"Plain output for scripts" default:"false"`
	Verbose bool   `help:"Verbose logging" default:"false"`
	NoInput bool   `help:"Never prompt; fail instead" name:"no-input" default:"false"`
}

// CLI is the top-level Kong command struct.
type CLI struct {
	RootFlags `embed:""`

	Version    kong.VersionFlag `help:"Print version and exit"`
	VersionCmd VersionCmd       `cmd:"" name:"version" help:"Print version info"`
	Show       ShowCmd          `cmd:"" name:"show" default:"withargs" help:"Preview image files or an existing result"`
	Pick       PickCmd          `cmd:"" name:"pick" help:"Pick an image interactively and preview it"`
	Fit        FitCmd           `cmd:"" name:"fit" help:"Compute the scale-to-fit display size"`
	Config     ConfigCmd        `cmd:"" name:"config" help:"Manage configuration"`
}

// Execute parses CLI args, sets up context, and runs the matched command.
func Execute(args []string) (err error) {
	cli := &CLI{}
	parser, err := kong.New(
		cli,
		kong.Name("imgpreview"),
		kong.Description("Preview images scaled to fit a bounding box"),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": VersionString()},
		kong.Writers(os.Stdout, os.Stderr),
		kong.Exit(func(code int) { panic(exitPanic{code: code}) }),
	)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			if ep, ok := r.(exitPanic); ok {
				if ep.code == 0 {
					err = nil
					return
				}
				err = &ExitError{Code: ep.code, Err: errors.New("exited")}
				return
			}
			panic(r)
		}
	}()

	kctx, err := parser.Parse(args)
	if err != nil {
		return &ExitError{Code: ExitUsage, Err: err}
	}

	// Config
	cfgPath, _ := config.Path()
	cfg, cfgErr := config.Load(cfgPath)
	if cfgErr != nil {
		cfg = &config.Config{}
	}

	closeLog := setupLogging(os.Stderr, cli.Verbose, cfg.LogFile)
	defer closeLog()

	if cfgErr != nil {
		slog.Warn("loading config", "error", cfgErr)
	}

	// Output mode
	ctx := context.Background()
	ctx = outfmt.WithMode(ctx, outfmt.Mode{JSON: cli.JSON, Plain: cli.Plain})

	// UI printer -- force no color in JSON or plain mode
	uiColor := cli.Color
	if cli.JSON || cli.Plain {
		uiColor = ui.ColorNever
	}
	u, uiErr := ui.New(ui.Options{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Color:  uiColor,
	})
	if uiErr != nil {
		return uiErr
	}
	ctx = ui.WithUI(ctx, u)
	ctx = config.WithConfig(ctx, cfg)

	// Image source loader
	cacheDir, dirErr := config.CacheDir()
	if dirErr != nil {
		slog.Warn("resolving cache dir", "error", dirErr)
		cacheDir = ""
	}
	loader := source.NewLoader(source.Options{
		UserAgent: "imgpreview-cli/" + version,
		Verbose:   cli.Verbose,
		CacheDir:  cacheDir,
		CacheTTL:  cfg.CacheTTLDuration(),
	})
	ctx = source.WithLoader(ctx, loader)

	// Bind context + root flags to Kong
	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.Bind(&cli.RootFlags)

	return kctx.Run()
}
