// Package outfmt provides context-based output mode selection (JSON, plain or human).
package outfmt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// Mode controls output formatting. JSON wins over Plain.
type Mode struct {
	JSON bool
	// Plain prints bare values for scripts, without tables or color.
	Plain bool
}

type ctxKey struct{}

// WithMode stores the output mode in the context.
func WithMode(ctx context.Context, mode Mode) context.Context {
	return context.WithValue(ctx, ctxKey{}, mode)
}

// FromContext returns the stored mode, or the zero (human) mode.
func FromContext(ctx context.Context) Mode {
	if v := ctx.Value(ctxKey{}); v != nil {
		if m, ok := v.(Mode); ok {
			return m
		}
	}

	return Mode{}
}

// IsJSON returns true if the context has JSON output mode enabled.
func IsJSON(ctx context.Context) bool { return FromContext(ctx).JSON }

// IsPlain returns true if plain output is requested and JSON is not.
func IsPlain(ctx context.Context) bool {
	m := FromContext(ctx)

	return m.Plain && !m.JSON
}

// WriteJSON writes v as pretty-printed JSON to w.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}

	return nil
}
