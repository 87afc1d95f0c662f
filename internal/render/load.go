package render

import (
	"context"
	"errors"
)

var (
	// ErrSuperseded resolves a load whose source was replaced before its
	// decode completed. Its image is never painted.
	ErrSuperseded = errors.New("load superseded by a newer source")
	// ErrClosed resolves loads started on, or still running at, a closed renderer.
	ErrClosed = errors.New("renderer closed")
)

// Result describes one painted load cycle.
type Result struct {
	Token   uint64 `json:"token"`
	Source  string `json:"source"`
	Natural Size   `json:"natural"`
	Display Size   `json:"display"`
	Axis    Axis   `json:"scaled_by"`
}

// Load is the pending outcome of one load cycle.
type Load struct {
	token  uint64
	source string
	done   chan struct{}
	res    Result
	err    error
}

func newLoad(token uint64, src string) *Load {
	return &Load{token: token, source: src, done: make(chan struct{})}
}

func (l *Load) finish(res Result, err error) {
	l.res, l.err = res, err
	close(l.done)
}

// Token identifies the load cycle. Later loads have larger tokens.
func (l *Load) Token() uint64 { return l.token }

// Source is the URL the load decodes.
func (l *Load) Source() string { return l.source }

// Done is closed once the load has painted, failed or been superseded.
func (l *Load) Done() <-chan struct{} { return l.done }

// Wait blocks until the load resolves or ctx is done.
func (l *Load) Wait(ctx context.Context) (Result, error) {
	select {
	case <-l.done:
		return l.res, l.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Result returns the outcome. It is only meaningful after Done is closed.
func (l *Load) Result() (Result, error) { return l.res, l.err }
