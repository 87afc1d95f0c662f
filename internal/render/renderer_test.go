package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xdraw "golang.org/x/image/draw"

	"github.com/dedene/imgpreview-cli/internal/decode"
	"github.com/dedene/imgpreview-cli/internal/page"
	"github.com/dedene/imgpreview-cli/internal/source"
)

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

// gatedOpener serves fixed URLs and lets tests hold individual opens.
type gatedOpener struct {
	mu    sync.Mutex
	data  map[string][]byte
	gates map[string]chan struct{}
	base  *source.Loader
	opens []string
}

func newGatedOpener(reg *source.Registry) *gatedOpener {
	return &gatedOpener{
		data:  map[string][]byte{},
		gates: map[string]chan struct{}{},
		base:  source.NewLoader(source.Options{Registry: reg}),
	}
}

func (o *gatedOpener) hold(u string) chan struct{} {
	o.mu.Lock()
	defer o.mu.Unlock()

	ch := make(chan struct{})
	o.gates[u] = ch

	return ch
}

func (o *gatedOpener) Open(ctx context.Context, u string) (io.ReadCloser, error) {
	o.mu.Lock()
	o.opens = append(o.opens, u)
	gate := o.gates[u]
	data, ok := o.data[u]
	o.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if ok {
		return io.NopCloser(bytes.NewReader(data)), nil
	}

	return o.base.Open(ctx, u)
}

func (o *gatedOpener) openCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return len(o.opens)
}

type fixture struct {
	canvas   *Canvas
	opener   *gatedOpener
	registry *source.Registry
	r        *Renderer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	reg := source.NewRegistry()
	op := newGatedOpener(reg)
	canvas := NewCanvas(xdraw.NearestNeighbor)

	r := New(Options{
		Surface:  canvas,
		Opener:   op,
		Registry: reg,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	t.Cleanup(r.Close)

	return &fixture{canvas: canvas, opener: op, registry: reg, r: r}
}

func wait(t *testing.T, ld *Load) (Result, error) {
	t.Helper()
	require.NotNil(t, ld)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return ld.Wait(ctx)
}

func TestOnFileSelected_Empty(t *testing.T) {
	f := newFixture(t)

	assert.Nil(t, f.r.OnFileSelected(context.Background(), nil))
	assert.Nil(t, f.r.OnFileSelected(context.Background(), []source.Payload{}))
	assert.Equal(t, 0, f.opener.openCount())
	assert.Equal(t, Size{0, 0}, f.canvas.Size())
	assert.Equal(t, 0, f.canvas.Draws())
	assert.Equal(t, uint64(0), f.r.Active())
}

func TestOnFileSelected_ScalesLandscape(t *testing.T) {
	f := newFixture(t)
	red := color.RGBA{R: 255, A: 255}

	ld := f.r.OnFileSelected(context.Background(), []source.Payload{
		{Name: "wide.png", Data: pngBytes(t, 1000, 400, red)},
	})

	res, err := wait(t, ld)
	require.NoError(t, err)
	assert.Equal(t, Size{1000, 400}, res.Natural)
	assert.Equal(t, Size{500, 200}, res.Display)
	assert.Equal(t, AxisWidth, res.Axis)
	assert.Equal(t, Size{500, 200}, f.canvas.Size())
	assert.Equal(t, 1, f.canvas.Draws())

	// The image fills the whole surface.
	snap := f.canvas.Snapshot()
	for _, pt := range []image.Point{{0, 0}, {499, 199}, {250, 100}} {
		assert.Equal(t, red, snap.RGBAAt(pt.X, pt.Y), "pixel %v", pt)
	}
}

func TestOnFileSelected_FirstOnly(t *testing.T) {
	f := newFixture(t)

	ld := f.r.OnFileSelected(context.Background(), []source.Payload{
		{Name: "a.png", Data: pngBytes(t, 40, 30, color.Black)},
		{Name: "b.png", Data: pngBytes(t, 10, 10, color.White)},
	})

	res, err := wait(t, ld)
	require.NoError(t, err)
	assert.Equal(t, Size{40, 30}, res.Display)
	assert.Equal(t, AxisNone, res.Axis)
	assert.Equal(t, 1, f.opener.openCount())
	assert.Equal(t, 1, f.registry.Len())
}

func TestOnFileSelected_RevokesPrevious(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.r.OnFileSelected(ctx, []source.Payload{{Data: pngBytes(t, 2, 2, color.Black)}})
	_, err := wait(t, first)
	require.NoError(t, err)

	second := f.r.OnFileSelected(ctx, []source.Payload{{Data: pngBytes(t, 3, 3, color.Black)}})
	_, err = wait(t, second)
	require.NoError(t, err)

	assert.Equal(t, 1, f.registry.Len(), "only the active transient url stays alive")

	_, err = f.registry.Open(first.Source())
	assert.ErrorIs(t, err, source.ErrRevoked)
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.opener.data["https://x/slow.png"] = pngBytes(t, 800, 100, color.Black)
	f.opener.data["https://x/fast.png"] = pngBytes(t, 100, 800, color.White)
	gate := f.opener.hold("https://x/slow.png")

	slow := f.r.OnInitialResultPresent(ctx, []string{"https://x/slow.png"})
	fast := f.r.OnFileSelected(ctx, []source.Payload{{Data: pngBytes(t, 100, 800, color.White)}})

	res, err := wait(t, fast)
	require.NoError(t, err)
	assert.Equal(t, Size{62, 500}, res.Display)

	// Let the earlier decode finish after the later one painted.
	close(gate)

	_, err = wait(t, slow)
	require.ErrorIs(t, err, ErrSuperseded)

	assert.Equal(t, Size{62, 500}, f.canvas.Size())
	assert.Equal(t, 1, f.canvas.Draws())
	assert.Greater(t, fast.Token(), slow.Token())
	assert.Equal(t, fast.Token(), f.r.Active())
}

func TestDecodeFailureLeavesSurface(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ok := f.r.OnFileSelected(ctx, []source.Payload{{Data: pngBytes(t, 20, 10, color.Black)}})
	_, err := wait(t, ok)
	require.NoError(t, err)

	bad := f.r.OnFileSelected(ctx, []source.Payload{{Name: "corrupt.png", Data: []byte("not an image")}})
	_, err = wait(t, bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, decode.ErrDecode)

	assert.Equal(t, Size{20, 10}, f.canvas.Size())
	assert.Equal(t, 1, f.canvas.Draws())
}

func TestOpenFailureIsReported(t *testing.T) {
	f := newFixture(t)

	ld := f.r.OnInitialResultPresent(context.Background(), []string{"/does/not/exist.png"})
	_, err := wait(t, ld)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading /does/not/exist.png")
	assert.Equal(t, 0, f.canvas.Draws())
}

func TestOnInitialResultPresent_Guard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Nil(t, f.r.OnInitialResultPresent(ctx, nil))
	assert.Nil(t, f.r.OnInitialResultPresent(ctx, []string{"a.png", "b.png"}))
	assert.Equal(t, 0, f.opener.openCount())
}

func TestMount_LoadsSingleResult(t *testing.T) {
	f := newFixture(t)
	f.opener.data["https://x/result.png"] = pngBytes(t, 600, 600, color.Black)

	ld := f.r.Mount(context.Background(), page.StaticProbe("https://x/result.png"))

	res, err := wait(t, ld)
	require.NoError(t, err)
	assert.Equal(t, Size{500, 500}, res.Display)
	assert.Equal(t, AxisHeight, res.Axis)
	assert.Equal(t, "https://x/result.png", res.Source)
}

func TestMount_RunsOnce(t *testing.T) {
	f := newFixture(t)
	f.opener.data["https://x/result.png"] = pngBytes(t, 5, 5, color.Black)
	probe := page.StaticProbe("https://x/result.png")

	first := f.r.Mount(context.Background(), probe)
	_, err := wait(t, first)
	require.NoError(t, err)

	assert.Nil(t, f.r.Mount(context.Background(), probe))
	assert.Equal(t, 1, f.opener.openCount())
}

func TestMount_SkipsZeroOrMany(t *testing.T) {
	for _, urls := range [][]string{nil, {"a.png", "b.png"}} {
		f := newFixture(t)

		assert.Nil(t, f.r.Mount(context.Background(), page.StaticProbe(urls...)))
		assert.Equal(t, 0, f.opener.openCount())
	}
}

func TestMount_ProbeErrorIsAbsent(t *testing.T) {
	f := newFixture(t)
	probe := page.ProbeFunc(func(context.Context) ([]string, error) {
		return nil, errors.New("boom")
	})

	assert.Nil(t, f.r.Mount(context.Background(), probe))
}

func TestFileSelectionSupersedesMount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.opener.data["https://x/result.png"] = pngBytes(t, 50, 50, color.Black)
	gate := f.opener.hold("https://x/result.png")

	mounted := f.r.Mount(ctx, page.StaticProbe("https://x/result.png"))
	picked := f.r.OnFileSelected(ctx, []source.Payload{{Data: pngBytes(t, 30, 20, color.White)}})

	_, err := wait(t, picked)
	require.NoError(t, err)
	close(gate)

	_, err = wait(t, mounted)
	assert.ErrorIs(t, err, ErrSuperseded)
	assert.Equal(t, Size{30, 20}, f.canvas.Size())
}

func TestClose(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.opener.data["https://x/held.png"] = pngBytes(t, 5, 5, color.Black)
	gate := f.opener.hold("https://x/held.png")

	sel := f.r.OnFileSelected(ctx, []source.Payload{{Data: pngBytes(t, 5, 5, color.Black)}})
	_, err := wait(t, sel)
	require.NoError(t, err)

	held := f.r.OnInitialResultPresent(ctx, []string{"https://x/held.png"})
	assert.Equal(t, 0, f.registry.Len(), "replacing a selection revokes its url")

	go func() {
		time.Sleep(10 * time.Millisecond)
		close(gate)
	}()

	f.r.Close()

	_, err = wait(t, held)
	assert.ErrorIs(t, err, ErrClosed)

	after := f.r.OnFileSelected(ctx, []source.Payload{{Data: pngBytes(t, 5, 5, color.Black)}})
	_, err = wait(t, after)
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, 0, f.registry.Len())

	// Idempotent.
	f.r.Close()
}

func TestClose_RevokesActiveBlob(t *testing.T) {
	f := newFixture(t)

	ld := f.r.OnFileSelected(context.Background(), []source.Payload{{Data: pngBytes(t, 5, 5, color.Black)}})
	_, err := wait(t, ld)
	require.NoError(t, err)
	require.Equal(t, 1, f.registry.Len())

	f.r.Close()
	assert.Equal(t, 0, f.registry.Len())
}

func TestNew_DefaultBounds(t *testing.T) {
	r := New(Options{Surface: NewCanvas(nil), Opener: source.NewLoader(source.Options{})})
	assert.Equal(t, Size{500, 500}, r.Bounds())

	r = New(Options{Surface: NewCanvas(nil), Bounds: Size{W: 200}})
	assert.Equal(t, Size{200, 500}, r.Bounds())
}

func TestCustomBounds(t *testing.T) {
	reg := source.NewRegistry()
	canvas := NewCanvas(nil)
	r := New(Options{
		Surface:  canvas,
		Opener:   source.NewLoader(source.Options{Registry: reg}),
		Registry: reg,
		Bounds:   Size{W: 100, H: 100},
	})
	defer r.Close()

	res, err := wait(t, r.OnFileSelected(context.Background(), []source.Payload{{Data: pngBytes(t, 400, 200, color.Black)}}))
	require.NoError(t, err)
	assert.Equal(t, Size{100, 50}, res.Display)
	assert.Equal(t, Size{100, 50}, canvas.Size())
}

func TestMount_SkipsPagesWithSeveralResultElements(t *testing.T) {
	pages := []string{
		`<img id="result" src="a.png"><img id="result">`,
		`<div id="result"></div><img id="result" src="a.png">`,
	}

	for _, doc := range pages {
		f := newFixture(t)
		path := filepath.Join(t.TempDir(), "index.html")
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

		assert.Nil(t, f.r.Mount(context.Background(), page.FileProbe(path, page.DefaultResultID)), doc)
		assert.Equal(t, 0, f.opener.openCount())
		assert.Equal(t, 0, f.canvas.Draws())
	}
}

func TestMount_SingleResultWithoutSrcFails(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(path, []byte(`<img id="result">`), 0o644))

	ld := f.r.Mount(context.Background(), page.FileProbe(path, page.DefaultResultID))

	_, err := wait(t, ld)
	require.ErrorIs(t, err, source.ErrNoSource)
	assert.Equal(t, 0, f.canvas.Draws())
}
