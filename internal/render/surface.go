package render

import (
	"fmt"
	"image"
	"sync"

	xdraw "golang.org/x/image/draw"
)

// Surface is a drawable target. SetSize clears it to the given pixel
// dimensions; Draw scales img into dst, replacing whatever was there.
type Surface interface {
	SetSize(w, h int)
	Draw(img image.Image, dst image.Rectangle)
}

// Interpolator returns the x/image/draw scaler registered under name.
func Interpolator(name string) (xdraw.Interpolator, error) {
	switch name {
	case "nearest":
		return xdraw.NearestNeighbor, nil
	case "approx":
		return xdraw.ApproxBiLinear, nil
	case "bilinear":
		return xdraw.BiLinear, nil
	case "catmullrom", "":
		return xdraw.CatmullRom, nil
	default:
		return nil, fmt.Errorf("unknown filter %q", name)
	}
}

// Canvas is an in-memory Surface backed by an RGBA image.
type Canvas struct {
	mu     sync.RWMutex
	img    *image.RGBA
	scaler xdraw.Interpolator
	draws  int
}

// NewCanvas creates an empty 0x0 canvas that paints with scaler.
// A nil scaler defaults to Catmull-Rom.
func NewCanvas(scaler xdraw.Interpolator) *Canvas {
	if scaler == nil {
		scaler = xdraw.CatmullRom
	}

	return &Canvas{
		img:    image.NewRGBA(image.Rect(0, 0, 0, 0)),
		scaler: scaler,
	}
}

// SetSize reallocates the canvas, discarding its contents.
func (c *Canvas) SetSize(w, h int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.img = image.NewRGBA(image.Rect(0, 0, w, h))
}

// Draw scales img's full bounds into dst with the Src operator.
func (c *Canvas) Draw(img image.Image, dst image.Rectangle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.scaler.Scale(c.img, dst, img, img.Bounds(), xdraw.Src, nil)
	c.draws++
}

// Size returns the current pixel dimensions.
func (c *Canvas) Size() Size {
	c.mu.RLock()
	defer c.mu.RUnlock()

	b := c.img.Bounds()

	return Size{W: b.Dx(), H: b.Dy()}
}

// Draws returns how many times the canvas has been painted.
func (c *Canvas) Draws() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.draws
}

// Snapshot returns a copy of the current pixels.
func (c *Canvas) Snapshot() *image.RGBA {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := image.NewRGBA(c.img.Bounds())
	copy(out.Pix, c.img.Pix)

	return out
}
