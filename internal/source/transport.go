package source

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// loggingTransport wraps an http.RoundTripper with slog debug logging.
type loggingTransport struct {
	base http.RoundTripper
}

// RoundTrip implements http.RoundTripper with request/response logging.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	slog.Debug("image fetch", "url", req.URL.String())

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		slog.Debug("image fetch failed",
			"url", req.URL.String(),
			"error", err,
			"duration", time.Since(start),
		)

		return nil, fmt.Errorf("logging round trip: %w", err)
	}

	slog.Debug("image fetched",
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
		"duration", time.Since(start),
	)

	return resp, nil
}

// userAgentTransport stamps every request with a fixed User-Agent.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)

	return t.base.RoundTrip(req)
}

// newHTTPClient builds the client used for remote image sources.
// Failed fetches are not retried.
func newHTTPClient(userAgent string, verbose bool) *http.Client {
	var transport http.RoundTripper = &userAgentTransport{
		base:      http.DefaultTransport,
		userAgent: userAgent,
	}

	if verbose {
		transport = &loggingTransport{base: transport}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	}
}
