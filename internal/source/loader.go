package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dedene/imgpreview-cli/internal/cache"
)

var (
	// ErrHTTPStatus indicates the server returned a non-200 status code.
	ErrHTTPStatus = errors.New("unexpected HTTP status")
	// ErrTooLarge indicates a remote image exceeded the download cap.
	ErrTooLarge = errors.New("remote image too large")
	// ErrNoSource is returned for an empty source URL, such as a result
	// element without a src.
	ErrNoSource = errors.New("empty image source")
)

// DefaultMaxRemoteBytes caps how much of a remote image is read into memory.
const DefaultMaxRemoteBytes = 64 << 20

// Options configures a Loader.
type Options struct {
	// Registry resolves blob: URLs. Required for file selections.
	Registry *Registry
	// HTTPClient overrides the default client for http(s) sources.
	HTTPClient *http.Client
	UserAgent  string
	Verbose    bool
	// CacheDir enables the on-disk cache for remote images when non-empty.
	CacheDir string
	CacheTTL time.Duration
	// MaxRemoteBytes overrides DefaultMaxRemoteBytes when positive.
	MaxRemoteBytes int64
}

// Loader opens image sources by URL: blob:, data:, http(s):, file: and
// bare filesystem paths.
type Loader struct {
	registry *Registry
	http     *http.Client
	cacheDir string
	cacheTTL time.Duration
	maxBytes int64
	group    singleflight.Group
}

// NewLoader builds a Loader from opts.
func NewLoader(opts Options) *Loader {
	ua := opts.UserAgent
	if ua == "" {
		ua = "imgpreview-cli/dev"
	}

	client := opts.HTTPClient
	if client == nil {
		client = newHTTPClient(ua, opts.Verbose)
	}

	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}

	maxBytes := opts.MaxRemoteBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRemoteBytes
	}

	return &Loader{
		registry: reg,
		http:     client,
		cacheDir: opts.CacheDir,
		cacheTTL: opts.CacheTTL,
		maxBytes: maxBytes,
	}
}

// Registry returns the transient URL registry backing blob: sources.
func (l *Loader) Registry() *Registry { return l.registry }

// HTTPClient returns the client used for remote sources. Nil-safe.
func (l *Loader) HTTPClient() *http.Client {
	if l == nil {
		return nil
	}

	return l.http
}

// Open returns a reader over the bytes behind rawURL.
func (l *Loader) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	switch {
	case strings.TrimSpace(rawURL) == "":
		return nil, ErrNoSource
	case IsBlob(rawURL):
		return l.registry.Open(rawURL)
	case strings.HasPrefix(rawURL, DataScheme):
		_, data, err := parseDataURL(rawURL)
		if err != nil {
			return nil, err
		}

		return io.NopCloser(bytes.NewReader(data)), nil
	case strings.HasPrefix(rawURL, "http://"), strings.HasPrefix(rawURL, "https://"):
		data, err := l.fetchRemote(ctx, rawURL)
		if err != nil {
			return nil, err
		}

		return io.NopCloser(bytes.NewReader(data)), nil
	case strings.HasPrefix(rawURL, "file://"):
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", rawURL, err)
		}

		return openFile(u.Path)
	default:
		return openFile(rawURL)
	}
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the user or the probed page
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	return f, nil
}

// fetchRemote returns cached bytes when fresh, otherwise downloads them.
// Concurrent loads of the same URL share one download.
func (l *Loader) fetchRemote(ctx context.Context, rawURL string) ([]byte, error) {
	if l.cacheDir != "" {
		e, err := cache.Load(l.cacheDir, rawURL, l.cacheTTL)
		if err != nil {
			slog.Warn("reading image cache", "url", rawURL, "error", err)
		}

		if e != nil {
			slog.Debug("image cache hit", "url", rawURL)

			return e.Data, nil
		}
	}

	v, err, shared := l.group.Do(rawURL, func() (any, error) {
		return l.download(ctx, rawURL)
	})
	if err != nil {
		return nil, err
	}

	if shared {
		slog.Debug("shared in-flight image fetch", "url", rawURL)
	}

	return v.([]byte), nil
}

func (l *Loader) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := l.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading %s: %w: %d", rawURL, ErrHTTPStatus, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}

	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("downloading %s: %w: over %d bytes", rawURL, ErrTooLarge, l.maxBytes)
	}

	if l.cacheDir != "" {
		if err := cache.Save(l.cacheDir, rawURL, resp.Header.Get("Content-Type"), data); err != nil {
			slog.Warn("writing image cache", "url", rawURL, "error", err)
		}
	}

	return data, nil
}
