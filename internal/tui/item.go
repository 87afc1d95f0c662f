// Package tui provides the interactive Bubbletea file picker that produces
// image file selections.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// imageExts mirrors an accept="image/*" filter for common formats.
var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".webp": true, ".bmp": true, ".tif": true, ".tiff": true,
}

// FileItem wraps an image file path to implement the bubbles
// list.DefaultItem interface.
type FileItem struct {
	path   string
	size   int64
	marked bool
}

// NewFileItem creates a FileItem for path with the given byte size.
func NewFileItem(path string, size int64) FileItem {
	return FileItem{path: path, size: size}
}

// Title returns the file name, prefixed when marked.
func (i FileItem) Title() string {
	if i.marked {
		return "[x] " + filepath.Base(i.path)
	}

	return filepath.Base(i.path)
}

// Description returns the file size and directory.
func (i FileItem) Description() string {
	return fmt.Sprintf("%s | %s", humanSize(i.size), filepath.Dir(i.path))
}

// FilterValue returns the file name for fuzzy matching.
func (i FileItem) FilterValue() string { return filepath.Base(i.path) }

// Path returns the full file path.
func (i FileItem) Path() string { return i.path }

// Marked reports whether the item is part of a multi-selection.
func (i FileItem) Marked() bool { return i.marked }

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// ScanDir lists image files directly inside dir, sorted by name.
func ScanDir(dir string) ([]FileItem, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var items []FileItem

	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}

		items = append(items, NewFileItem(filepath.Join(dir, e.Name()), info.Size()))
	}

	sort.Slice(items, func(a, b int) bool { return items[a].path < items[b].path })

	return items, nil
}
