// Package decode turns encoded image bytes into pixels.
package decode

import (
	"errors"
	"fmt"
	"image"
	"io"

	// Register image format decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrDecode wraps every failure to turn a payload into an image.
var ErrDecode = errors.New("decode image")

// Decode reads an image from r. JPEG EXIF orientation is applied so the
// natural size matches what a viewer would show.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image %dx%d", ErrDecode, b.Dx(), b.Dy())
	}

	return img, nil
}

// Format reports the registered format name of the encoded data in r
// without decoding the pixels. Unknown data returns an error.
func Format(r io.Reader) (string, error) {
	_, format, err := image.DecodeConfig(r)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return format, nil
}
