// Package source resolves image sources (selected file payloads and URLs)
// into readable bytes.
package source

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dedene/imgpreview-cli/internal/decode"
)

// Payload is the binary content of one user-selected file. Type is the
// sniffed MIME type and is informational only.
type Payload struct {
	Name string
	Type string
	Data []byte
}

// PayloadFromFile reads path into a Payload.
func PayloadFromFile(path string) (Payload, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is a user-selected file
	if err != nil {
		return Payload{}, fmt.Errorf("reading %s: %w", path, err)
	}

	return Payload{
		Name: filepath.Base(path),
		Type: sniffType(data),
		Data: data,
	}, nil
}

// PayloadsFromFiles reads every path in order. The first read failure
// aborts the selection.
func PayloadsFromFiles(paths []string) ([]Payload, error) {
	payloads := make([]Payload, 0, len(paths))

	for _, p := range paths {
		pl, err := PayloadFromFile(p)
		if err != nil {
			return nil, err
		}

		payloads = append(payloads, pl)
	}

	return payloads, nil
}

// sniffType names the payload's MIME type from the registered image
// decoders, falling back to generic content sniffing for anything else.
// It never rejects a payload.
func sniffType(data []byte) string {
	if format, err := decode.Format(bytes.NewReader(data)); err == nil {
		return "image/" + format
	}

	return http.DetectContentType(data)
}
