// Package main is the entry point for the imgpreview CLI.
package main

import (
	"io"
	"os"

	"github.com/dedene/imgpreview-cli/internal/cmd"
	"github.com/dedene/imgpreview-cli/internal/ui"
)

func main() {
	err := cmd.Execute(os.Args[1:])
	report(os.Stderr, ui.ColorAuto, err)
	os.Exit(cmd.ExitCode(err))
}

// report prints a failed run's error through the stderr error printer.
func report(w io.Writer, color string, err error) {
	if err == nil {
		return
	}

	u, uiErr := ui.New(ui.Options{Stderr: w, Color: color})
	if uiErr != nil {
		return
	}

	u.Err().Errorf("%v", err)
}
