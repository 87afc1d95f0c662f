// Package cache provides a file-based cache of fetched remote images with TTL support.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry is the on-disk representation of one cached image.
type Entry struct {
	URL         string    `json:"url"`
	ContentType string    `json:"content_type,omitempty"`
	Data        []byte    `json:"data"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Path returns the cache file for rawURL inside dir.
func Path(dir, rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))

	return filepath.Join(dir, hex.EncodeToString(sum[:])+".json")
}

// Load reads the cache entry for rawURL and returns it if fresh.
// Returns (nil, nil) when: file missing, JSON corrupt, URL mismatch or TTL expired.
// Only returns a non-nil error for unexpected read failures.
func Load(dir, rawURL string, ttl time.Duration) (*Entry, error) {
	data, err := os.ReadFile(Path(dir, rawURL))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading cache: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		// Corrupt cache -- treat as miss.
		return nil, nil //nolint:nilerr
	}

	if e.URL != rawURL || time.Since(e.FetchedAt) > ttl {
		return nil, nil
	}

	return &e, nil
}

// Save writes the image bytes fetched from rawURL to the cache atomically.
func Save(dir, rawURL, contentType string, data []byte) error {
	e := Entry{
		URL:         rawURL,
		ContentType: contentType,
		Data:        data,
		FetchedAt:   time.Now(),
	}

	buf, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}

	return atomicWrite(Path(dir, rawURL), buf)
}

// atomicWrite writes data to path via temp-file + rename.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tmpPath := tmp.Name()

	defer func() {
		if tmpPath != "" {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	tmpPath = "" // prevent deferred cleanup

	return nil
}
