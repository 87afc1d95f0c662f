package render

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"sync"

	"github.com/dedene/imgpreview-cli/internal/decode"
	"github.com/dedene/imgpreview-cli/internal/page"
	"github.com/dedene/imgpreview-cli/internal/source"
)

// Opener resolves an image source URL to its encoded bytes.
type Opener interface {
	Open(ctx context.Context, rawURL string) (io.ReadCloser, error)
}

// Options configures a Renderer.
type Options struct {
	Surface  Surface
	Opener   Opener
	Registry *source.Registry
	// Bounds is the maximum display size. Zero fields default to 500.
	Bounds Size
	Logger *slog.Logger
	// Decode overrides decode.Decode.
	Decode func(io.Reader) (image.Image, error)
}

// Renderer previews the most recently selected image source on a surface.
// Each new source supersedes the previous one: only the load holding the
// active token may paint.
type Renderer struct {
	surface  Surface
	opener   Opener
	registry *source.Registry
	bounds   Size
	logger   *slog.Logger
	decode   func(io.Reader) (image.Image, error)

	mu     sync.Mutex
	token  uint64
	blob   string
	closed bool

	mountOnce sync.Once
	wg        sync.WaitGroup
}

// New creates a Renderer. Surface and Opener are required.
func New(opts Options) *Renderer {
	b := opts.Bounds
	if b.W <= 0 {
		b.W = 500
	}

	if b.H <= 0 {
		b.H = 500
	}

	reg := opts.Registry
	if reg == nil {
		reg = source.NewRegistry()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dec := opts.Decode
	if dec == nil {
		dec = decode.Decode
	}

	return &Renderer{
		surface:  opts.Surface,
		opener:   opts.Opener,
		registry: reg,
		bounds:   b,
		logger:   logger,
		decode:   dec,
	}
}

// Bounds returns the maximum display size.
func (r *Renderer) Bounds() Size { return r.bounds }

// Mount runs the startup probe once. When it reports exactly one result
// source, that source is loaded. Probe failures count as "no result".
// Calls after the first return nil.
func (r *Renderer) Mount(ctx context.Context, probe page.Probe) *Load {
	var ld *Load

	r.mountOnce.Do(func() {
		if probe == nil {
			return
		}

		urls, err := probe.Results(ctx)
		if err != nil {
			r.logger.Warn("probing for existing result", "error", err)

			return
		}

		ld = r.OnInitialResultPresent(ctx, urls)
	})

	return ld
}

// OnFileSelected previews the first of files. An empty selection is a
// no-op and returns nil; extra files are ignored.
func (r *Renderer) OnFileSelected(ctx context.Context, files []source.Payload) *Load {
	if len(files) == 0 {
		return nil
	}

	if len(files) > 1 {
		r.logger.Debug("ignoring extra selected files", "count", len(files)-1)
	}

	u := r.registry.Create(files[0])
	r.logger.Debug("file selected", "name", files[0].Name, "type", files[0].Type, "bytes", len(files[0].Data))

	return r.submit(ctx, u)
}

// OnInitialResultPresent previews an existing result when exactly one
// result source is present. Zero or several sources are treated as absent.
func (r *Renderer) OnInitialResultPresent(ctx context.Context, urls []string) *Load {
	if len(urls) != 1 {
		if len(urls) > 1 {
			r.logger.Debug("ambiguous existing result, skipping", "count", len(urls))
		}

		return nil
	}

	return r.submit(ctx, urls[0])
}

// Active returns the token of the load allowed to paint.
func (r *Renderer) Active() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.token
}

// Close revokes the outstanding transient URL, drops the active token and
// waits for in-flight decodes. It is safe to call more than once.
func (r *Renderer) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		r.token++

		if r.blob != "" {
			r.registry.Revoke(r.blob)
			r.blob = ""
		}
	}
	r.mu.Unlock()

	r.wg.Wait()
}

// submit makes u the active source and starts decoding it.
func (r *Renderer) submit(ctx context.Context, u string) *Load {
	r.mu.Lock()

	if r.closed {
		r.mu.Unlock()

		if source.IsBlob(u) {
			r.registry.Revoke(u)
		}

		ld := newLoad(0, u)
		ld.finish(Result{}, ErrClosed)

		return ld
	}

	prev := r.blob
	r.blob = ""

	if source.IsBlob(u) {
		r.blob = u
	}

	r.token++
	ld := newLoad(r.token, u)

	r.wg.Add(1)
	r.mu.Unlock()

	if prev != "" {
		r.registry.Revoke(prev)
	}

	go r.run(ctx, ld)

	return ld
}

func (r *Renderer) run(ctx context.Context, ld *Load) {
	defer r.wg.Done()

	img, err := r.fetch(ctx, ld.source)

	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.closed:
		ld.finish(Result{}, ErrClosed)
	case ld.token != r.token:
		r.logger.Debug("discarding stale load", "token", ld.token, "active", r.token)
		ld.finish(Result{}, ErrSuperseded)
	case err != nil:
		r.logger.Warn("image decode failed", "source", shortSource(ld.source), "error", err)
		ld.finish(Result{}, err)
	default:
		ld.finish(r.onImageDecoded(ld, img), nil)
	}
}

func (r *Renderer) fetch(ctx context.Context, u string) (image.Image, error) {
	rc, err := r.opener.Open(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", shortSource(u), err)
	}
	defer rc.Close()

	return r.decode(rc)
}

// onImageDecoded sizes the surface and paints img. Callers hold r.mu.
func (r *Renderer) onImageDecoded(ld *Load, img image.Image) Result {
	b := img.Bounds()
	natural := Size{W: b.Dx(), H: b.Dy()}
	display, axis := ScaleToFit(natural, r.bounds)

	r.surface.SetSize(display.W, display.H)
	r.surface.Draw(img, image.Rect(0, 0, display.W, display.H))

	r.logger.Debug("painted preview",
		"token", ld.token,
		"natural", natural.String(),
		"display", display.String(),
		"scaled_by", axis.String(),
	)

	return Result{
		Token:   ld.token,
		Source:  shortSource(ld.source),
		Natural: natural,
		Display: display,
		Axis:    axis,
	}
}

// shortSource trims inline data URLs for logs and errors.
func shortSource(u string) string {
	const limit = 64
	if len(u) <= limit {
		return u
	}

	return u[:limit] + "..."
}
