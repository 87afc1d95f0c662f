// Package render previews an image source on a drawable surface, scaled to
// fit a bounding box.
package render

import "fmt"

// Size is a width/height pair in pixels.
type Size struct {
	W int `json:"width"`
	H int `json:"height"`
}

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.W, s.H) }

// Axis names the dimension pinned to its bound by ScaleToFit.
type Axis int

const (
	// AxisNone means the image already fit and was left unscaled.
	AxisNone Axis = iota
	// AxisHeight means the height was pinned to the maximum height.
	AxisHeight
	// AxisWidth means the width was pinned to the maximum width.
	AxisWidth
)

func (a Axis) String() string {
	switch a {
	case AxisHeight:
		return "height"
	case AxisWidth:
		return "width"
	default:
		return "none"
	}
}

// MarshalText renders the axis name in JSON output.
func (a Axis) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// ScaleToFit shrinks natural uniformly so it fits within bounds. It never
// enlarges. When the height is at least the width and exceeds bounds.H, the
// height is pinned; otherwise, when the width is at least the height and
// exceeds bounds.W, the width is pinned. Squares take the height branch.
//
// The free dimension is floor(other * max / pinned), and never below 1.
func ScaleToFit(natural, bounds Size) (Size, Axis) {
	w, h := natural.W, natural.H

	switch {
	case h >= w && h > bounds.H:
		return Size{W: scaleDim(w, bounds.H, h), H: bounds.H}, AxisHeight
	case w >= h && w > bounds.W:
		return Size{W: bounds.W, H: scaleDim(h, bounds.W, w)}, AxisWidth
	default:
		return natural, AxisNone
	}
}

func scaleDim(other, limit, pinned int) int {
	n := int(int64(other) * int64(limit) / int64(pinned))

	return max(n, 1)
}
