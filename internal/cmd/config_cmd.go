package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/dedene/imgpreview-cli/internal/config"
	"github.com/dedene/imgpreview-cli/internal/outfmt"
	"github.com/dedene/imgpreview-cli/internal/ui"
)

const unsetValue = "(unset)"

// ConfigCmd groups configuration subcommands.
type ConfigCmd struct {
	Path  ConfigPathCmd  `cmd:"" help:"Show config file path"`
	List  ConfigListCmd  `cmd:"" help:"List all config values"`
	Get   ConfigGetCmd   `cmd:"" help:"Get a config value"`
	Set   ConfigSetCmd   `cmd:"" help:"Set a config value"`
	Unset ConfigUnsetCmd `cmd:"" help:"Unset a config value"`
}

// ConfigPathCmd prints the config file path.
type ConfigPathCmd struct{}

// Run prints the config file path.
func (c *ConfigPathCmd) Run(_ context.Context) error {
	path, err := config.Path()
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, path)

	return nil
}

// ConfigListCmd lists all config values.
type ConfigListCmd struct{}

// Run lists every known key. Unset keys show the value the CLI falls back to.
func (c *ConfigListCmd) Run(ctx context.Context) error {
	cfg := contextConfig(ctx)

	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(os.Stdout, cfg)
	}

	if outfmt.IsPlain(ctx) {
		for _, key := range config.KnownKeys() {
			val, ok := cfg.Get(key)
			if !ok {
				val = unsetValue
			}

			fmt.Fprintf(os.Stdout, "%s = %s\n", key, val)
		}

		return nil
	}

	rows := make([][]string, 0, len(config.KnownKeys()))
	for _, key := range config.KnownKeys() {
		val, ok := cfg.Get(key)
		if !ok {
			val = unsetValue
		}

		rows = append(rows, []string{key, val})
	}

	fmt.Fprintln(os.Stdout, ui.RenderTable([]string{"KEY", "VALUE"}, rows, ui.FromContext(ctx).Out().ColorEnabled()))

	return nil
}

// ConfigGetCmd gets a single config value.
type ConfigGetCmd struct {
	Key string `arg:"" help:"Config key to get"`
}

// Run prints the value for the given key.
func (c *ConfigGetCmd) Run(ctx context.Context) error {
	val, ok := contextConfig(ctx).Get(c.Key)
	if !ok {
		val = unsetValue
	}

	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(os.Stdout, map[string]any{"key": c.Key, "value": val, "set": ok})
	}

	fmt.Fprintln(os.Stdout, val)

	return nil
}

// ConfigSetCmd sets a config value.
type ConfigSetCmd struct {
	Key   string `arg:"" help:"Config key"`
	Value string `arg:"" help:"Config value"`
}

// Run validates and persists key=value.
func (c *ConfigSetCmd) Run(ctx context.Context) error {
	return updateConfig(func(cfg *config.Config) error {
		if err := cfg.Set(c.Key, c.Value); err != nil {
			return &ExitError{Code: ExitUsage, Err: err}
		}

		ui.FromContext(ctx).Err().Successf("Set %s = %s", c.Key, c.Value)

		return nil
	})
}

// ConfigUnsetCmd removes a config value.
type ConfigUnsetCmd struct {
	Key string `arg:"" help:"Config key to unset"`
}

// Run unsets a config key, persisting to disk.
func (c *ConfigUnsetCmd) Run(ctx context.Context) error {
	return updateConfig(func(cfg *config.Config) error {
		if err := cfg.Unset(c.Key); err != nil {
			return &ExitError{Code: ExitUsage, Err: err}
		}

		ui.FromContext(ctx).Err().Successf("Unset %s", c.Key)

		return nil
	})
}

// updateConfig loads the on-disk config, applies fn and saves the result.
// Nothing is written when fn fails.
func updateConfig(fn func(*config.Config) error) error {
	path, err := config.Path()
	if err != nil {
		return err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if err := fn(cfg); err != nil {
		return err
	}

	return config.Save(path, cfg)
}

func contextConfig(ctx context.Context) *config.Config {
	if cfg := config.FromContext(ctx); cfg != nil {
		return cfg
	}

	return &config.Config{}
}
