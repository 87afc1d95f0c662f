package source

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// BlobScheme prefixes every transient local URL.
const BlobScheme = "blob:"

const blobPrefix = BlobScheme + "imgpreview/"

// ErrRevoked is returned when opening a transient URL that was revoked or
// never created.
var ErrRevoked = errors.New("transient url revoked")

// Registry holds payloads behind transient, revocable local URLs.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.Mutex
	blobs map[string]Payload
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{blobs: make(map[string]Payload)}
}

// Create stores p and returns a fresh transient URL for it.
func (r *Registry) Create(p Payload) string {
	u := blobPrefix + uuid.NewString()

	r.mu.Lock()
	r.blobs[u] = p
	r.mu.Unlock()

	return u
}

// Revoke releases the payload behind u. Revoking an unknown URL is a no-op.
func (r *Registry) Revoke(u string) {
	r.mu.Lock()
	delete(r.blobs, u)
	r.mu.Unlock()
}

// Open returns a reader over the payload behind u.
func (r *Registry) Open(u string) (io.ReadCloser, error) {
	r.mu.Lock()
	p, ok := r.blobs[u]
	r.mu.Unlock()

	if !ok {
		return nil, ErrRevoked
	}

	return io.NopCloser(bytes.NewReader(p.Data)), nil
}

// Len returns the number of live transient URLs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.blobs)
}

// IsBlob reports whether u is a transient local URL.
func IsBlob(u string) bool {
	return strings.HasPrefix(u, BlobScheme)
}
