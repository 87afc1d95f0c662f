// Package cmd implements the imgpreview CLI commands and Kong parser setup.
package cmd

import (
	"errors"

	"github.com/dedene/imgpreview-cli/internal/decode"
	"github.com/dedene/imgpreview-cli/internal/source"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
	// ExitPreview means the image could not be loaded or decoded.
	ExitPreview = 3
)

// ExitError attaches a process exit code to err.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e == nil || e.Err == nil {
		return "exit"
	}

	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

// ExitCode maps err to a process exit code. An ExitError decides for
// itself; bare decode and revoked-source failures map to ExitPreview.
func ExitCode(err error) int {
	var ee *ExitError

	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &ee) && ee != nil:
		return max(ee.Code, ExitFailure)
	case errors.Is(err, decode.ErrDecode), errors.Is(err, source.ErrRevoked):
		return ExitPreview
	default:
		return ExitFailure
	}
}

// exitPanic carries a kong.Exit code out of the parser as a panic so
// Execute can return it instead of terminating the process.
type exitPanic struct{ code int }
