// Package actions provides post-render output actions: saving the
// preview, clipboard copy and opening it in the default viewer.
package actions

import (
	"errors"
	"fmt"
	"image"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/disintegration/imaging"
	"github.com/pkg/browser"
)

const fallbackFilename = "preview.png"

// ErrClipboardUnsupported indicates the platform has no clipboard support.
var ErrClipboardUnsupported = errors.New("clipboard not supported on this platform")

// ClipboardWrite is a function variable for clipboard writes (swappable in tests).
var ClipboardWrite = clipboard.WriteAll

// ClipboardUnsupported mirrors clipboard.Unsupported (swappable in tests).
var ClipboardUnsupported = clipboard.Unsupported

// BrowserOpenFile is a function variable for opening local files (swappable in tests).
var BrowserOpenFile = browser.OpenFile

// CopyToClipboard copies text to the system clipboard.
// Returns a descriptive error if clipboard is unsupported on the platform.
func CopyToClipboard(text string) error {
	if ClipboardUnsupported {
		return ErrClipboardUnsupported
	}

	return ClipboardWrite(text)
}

// OpenFile opens a local file in the default viewer.
func OpenFile(path string) error {
	return BrowserOpenFile(path)
}

// SaveImage encodes img to destPath. The format follows the file
// extension (png, jpg, gif, bmp, tif).
func SaveImage(img image.Image, destPath string) error {
	if dir := filepath.Dir(destPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	if err := imaging.Save(img, destPath); err != nil {
		return fmt.Errorf("saving %s: %w", destPath, err)
	}

	return nil
}

// AutoFilename derives "<name>-preview.png" from a selected file name or a
// source URL. Falls back to "preview.png" when no name can be derived.
func AutoFilename(nameOrURL string) string {
	if nameOrURL == "" || strings.HasPrefix(nameOrURL, "data:") || strings.HasPrefix(nameOrURL, "blob:") {
		return fallbackFilename
	}

	p := nameOrURL
	if strings.Contains(nameOrURL, "://") {
		u, err := url.Parse(nameOrURL)
		if err != nil {
			return fallbackFilename
		}

		p = u.Path
	}

	base := path.Base(filepath.ToSlash(p))
	if base == "" || base == "." || base == "/" {
		return fallbackFilename
	}

	return strings.TrimSuffix(base, path.Ext(base)) + "-preview.png"
}
