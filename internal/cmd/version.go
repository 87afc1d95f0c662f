package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/dedene/imgpreview-cli/internal/outfmt"
)

// Set at build time via -ldflags.
var (
	version = "dev"
	commit  = ""
	date    = ""
)

// buildInfo is the version payload shared by text and JSON output.
type buildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	Date    string `json:"date,omitempty"`
	Go      string `json:"go"`
}

func currentBuild() buildInfo {
	v := strings.TrimSpace(version)
	if v == "" {
		v = "dev"
	}

	return buildInfo{
		Version: v,
		Commit:  strings.TrimSpace(commit),
		Date:    strings.TrimSpace(date),
		Go:      runtime.Version(),
	}
}

// VersionString returns "<version>" optionally followed by "(commit date)".
func VersionString() string {
	b := currentBuild()

	extra := strings.TrimSpace(b.Commit + " " + b.Date)
	if extra == "" {
		return b.Version
	}

	return fmt.Sprintf("%s (%s)", b.Version, extra)
}

// VersionCmd prints version information.
type VersionCmd struct{}

// Run executes the version command.
func (c *VersionCmd) Run(ctx context.Context) error {
	b := currentBuild()

	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(os.Stdout, b)
	}

	if outfmt.IsPlain(ctx) {
		fmt.Fprintln(os.Stdout, b.Version)

		return nil
	}

	fmt.Fprintf(os.Stdout, "imgpreview %s\n", VersionString())
	fmt.Fprintf(os.Stdout, "  go:     %s\n", b.Go)

	return nil
}
