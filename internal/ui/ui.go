// Package ui provides terminal output writers with color profile support.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
)

// ErrInvalidColor is returned when an unsupported --color value is given.
var ErrInvalidColor = errors.New("invalid --color value")

// Color modes accepted by --color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

const (
	colorError   = "#ef4444"
	colorWarn    = "#f59e0b"
	colorSuccess = "#22c55e"
)

// Options configures the UI.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Color  string // auto, always, never
}

// UI wraps stdout and stderr printers with color profile support.
type UI struct {
	out *Printer
	err *Printer
}

// New creates a UI with the given options.
func New(opts Options) (*UI, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	mode := strings.ToLower(strings.TrimSpace(opts.Color))
	if mode == "" {
		mode = ColorAuto
	}

	if mode != ColorAuto && mode != ColorAlways && mode != ColorNever {
		return nil, fmt.Errorf("%w: %q (expected auto|always|never)", ErrInvalidColor, mode)
	}

	return &UI{
		out: newPrinter(opts.Stdout, mode),
		err: newPrinter(opts.Stderr, mode),
	}, nil
}

// chooseProfile resolves the effective color profile from detected capability and user preference.
func chooseProfile(detected termenv.Profile, mode string) termenv.Profile {
	if termenv.EnvNoColor() {
		return termenv.Ascii
	}

	switch mode {
	case ColorNever:
		return termenv.Ascii
	case ColorAlways:
		return termenv.TrueColor
	default:
		return detected
	}
}

// Out returns the stdout printer.
func (u *UI) Out() *Printer { return u.out }

// Err returns the stderr printer.
func (u *UI) Err() *Printer { return u.err }

// Printer wraps a termenv.Output with a resolved color profile.
type Printer struct {
	o       *termenv.Output
	profile termenv.Profile
}

func newPrinter(w io.Writer, mode string) *Printer {
	o := termenv.NewOutput(w, termenv.WithProfile(termenv.EnvColorProfile()))

	return &Printer{o: o, profile: chooseProfile(o.Profile, mode)}
}

// Writer exposes the underlying output for renderers that write escape
// sequences themselves, such as inline image previews.
func (p *Printer) Writer() io.Writer { return p.o }

// ColorEnabled returns true when color output is active.
func (p *Printer) ColorEnabled() bool { return p.profile != termenv.Ascii }

func (p *Printer) line(s string) {
	_, _ = io.WriteString(p.o, s+"\n")
}

func (p *Printer) colored(hex, msg string) string {
	if !p.ColorEnabled() {
		return msg
	}

	return termenv.String(msg).Foreground(p.profile.Color(hex)).String()
}

// Println writes a line to the output.
func (p *Printer) Println(msg string) { p.line(msg) }

// Errorf writes a formatted error line prefixed with "Error: ".
func (p *Printer) Errorf(format string, args ...any) {
	p.line(p.colored(colorError, fmt.Sprintf("Error: "+format, args...)))
}

// Warnf writes a formatted warning line prefixed with "warning: ".
func (p *Printer) Warnf(format string, args ...any) {
	p.line(p.colored(colorWarn, fmt.Sprintf("warning: "+format, args...)))
}

// Successf writes a formatted success line with green color.
func (p *Printer) Successf(format string, args ...any) {
	p.line(p.colored(colorSuccess, fmt.Sprintf(format, args...)))
}

type uiCtxKey struct{}

// WithUI stores the UI in the context.
func WithUI(ctx context.Context, u *UI) context.Context {
	return context.WithValue(ctx, uiCtxKey{}, u)
}

// FromContext retrieves the UI from the context, falling back to a plain
// stdout/stderr UI when none was stored.
func FromContext(ctx context.Context) *UI {
	if v := ctx.Value(uiCtxKey{}); v != nil {
		if u, ok := v.(*UI); ok {
			return u
		}
	}

	u, _ := New(Options{Color: ColorNever})

	return u
}
