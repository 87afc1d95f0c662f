package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var box = Size{W: 500, H: 500}

func TestScaleToFit(t *testing.T) {
	tests := []struct {
		name    string
		natural Size
		want    Size
		axis    Axis
	}{
		{"within bounds", Size{320, 240}, Size{320, 240}, AxisNone},
		{"exactly at bounds", Size{500, 500}, Size{500, 500}, AxisNone},
		{"one pixel under", Size{499, 500}, Size{499, 500}, AxisNone},
		{"landscape", Size{1000, 400}, Size{500, 200}, AxisWidth},
		{"portrait", Size{400, 1000}, Size{200, 500}, AxisHeight},
		{"square", Size{600, 600}, Size{500, 500}, AxisHeight},
		{"near tie square", Size{501, 501}, Size{500, 500}, AxisHeight},
		{"wide but short", Size{501, 10}, Size{500, 9}, AxisWidth},
		{"floors", Size{333, 999}, Size{166, 500}, AxisHeight},
		{"extreme ratio clamps to one", Size{1, 2000}, Size{1, 500}, AxisHeight},
		{"extreme landscape", Size{5000, 2}, Size{500, 1}, AxisWidth},
		{"tiny", Size{1, 1}, Size{1, 1}, AxisNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, axis := ScaleToFit(tt.natural, box)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.axis, axis)
		})
	}
}

func TestScaleToFit_NonSquareBounds(t *testing.T) {
	// Branch choice follows the image orientation, not the box.
	got, axis := ScaleToFit(Size{300, 200}, Size{W: 100, H: 400})
	assert.Equal(t, AxisWidth, axis)
	assert.Equal(t, Size{100, 66}, got)

	// Portrait within the height bound but wider than the width bound is left alone.
	got, axis = ScaleToFit(Size{150, 300}, Size{W: 100, H: 400})
	assert.Equal(t, AxisNone, axis)
	assert.Equal(t, Size{150, 300}, got)
}

func TestScaleToFit_Properties(t *testing.T) {
	for w := 1; w <= 1600; w += 37 {
		for h := 1; h <= 1600; h += 41 {
			got, axis := ScaleToFit(Size{w, h}, box)

			switch {
			case w <= 500 && h <= 500:
				assert.Equal(t, Size{w, h}, got)
				assert.Equal(t, AxisNone, axis)
			case h >= w:
				assert.Equal(t, 500, got.H)
				assert.Equal(t, AxisHeight, axis)
				assert.Equal(t, max(w*500/h, 1), got.W)
			default:
				assert.Equal(t, 500, got.W)
				assert.Equal(t, AxisWidth, axis)
				assert.Equal(t, max(h*500/w, 1), got.H)
			}

			// Never enlarges, always fits.
			assert.LessOrEqual(t, got.W, max(w, 1))
			assert.LessOrEqual(t, got.H, h)
			assert.LessOrEqual(t, got.W, 500)
			assert.LessOrEqual(t, got.H, 500)

			// Aspect ratio holds up to the one pixel lost to flooring.
			if axis == AxisHeight && got.W > 1 {
				want := float64(w) * 500 / float64(h)
				assert.Less(t, math.Abs(want-float64(got.W)), 1.0)
			}

			if axis == AxisWidth && got.H > 1 {
				want := float64(h) * 500 / float64(w)
				assert.Less(t, math.Abs(want-float64(got.H)), 1.0)
			}
		}
	}
}

func TestAxisString(t *testing.T) {
	assert.Equal(t, "none", AxisNone.String())
	assert.Equal(t, "height", AxisHeight.String())
	assert.Equal(t, "width", AxisWidth.String())

	text, err := AxisWidth.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "width", string(text))
}

func TestSizeString(t *testing.T) {
	assert.Equal(t, "500x200", Size{500, 200}.String())
}
