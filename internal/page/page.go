// Package page probes an HTML page for a previously rendered result image.
package page

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// DefaultResultID is the element id marking a rendered result image.
const DefaultResultID = "result"

// Probe reports the sources of every result element present at startup.
type Probe interface {
	Results(ctx context.Context) ([]string, error)
}

// ProbeFunc adapts a function to the Probe interface.
type ProbeFunc func(ctx context.Context) ([]string, error)

// Results calls f.
func (f ProbeFunc) Results(ctx context.Context) ([]string, error) { return f(ctx) }

// StaticProbe reports a fixed list of result sources.
func StaticProbe(urls ...string) Probe {
	return ProbeFunc(func(context.Context) ([]string, error) {
		return urls, nil
	})
}

// FindResults returns one entry per element whose id equals id, in
// document order: its trimmed src, or "" when it has none. The count is the
// number of result elements, so callers can tell "exactly one" apart from
// "one of several happens to carry a src".
func FindResults(r io.Reader, id string) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	var srcs []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			srcs = append(srcs, strings.TrimSpace(attr(n, "src")))
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return srcs, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}

	return ""
}

// FileProbe reads an HTML file from disk. Relative sources resolve against
// the file's directory.
func FileProbe(path, id string) Probe {
	return ProbeFunc(func(context.Context) ([]string, error) {
		f, err := os.Open(path) //nolint:gosec // user-provided page path
		if err != nil {
			return nil, fmt.Errorf("opening page: %w", err)
		}
		defer f.Close()

		srcs, err := FindResults(f, id)
		if err != nil {
			return nil, err
		}

		dir := filepath.Dir(path)
		for i, s := range srcs {
			if s != "" && !hasScheme(s) && !filepath.IsAbs(s) {
				srcs[i] = filepath.Join(dir, filepath.FromSlash(s))
			}
		}

		return srcs, nil
	})
}

// ErrPageStatus indicates the page server returned a non-200 status code.
var ErrPageStatus = errors.New("unexpected page status")

// URLProbe fetches an HTML page over HTTP. Relative sources resolve
// against the page URL.
func URLProbe(client *http.Client, pageURL, id string) Probe {
	if client == nil {
		client = http.DefaultClient
	}

	return ProbeFunc(func(ctx context.Context) ([]string, error) {
		base, err := url.Parse(pageURL)
		if err != nil {
			return nil, fmt.Errorf("parsing page url: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetching page: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetching page: %w: %d", ErrPageStatus, resp.StatusCode)
		}

		srcs, err := FindResults(resp.Body, id)
		if err != nil {
			return nil, err
		}

		for i, s := range srcs {
			if s == "" || strings.HasPrefix(s, "data:") {
				continue
			}

			ref, err := url.Parse(s)
			if err != nil {
				continue
			}

			srcs[i] = base.ResolveReference(ref).String()
		}

		return srcs, nil
	})
}

// hasScheme reports whether s looks like a URL rather than a path.
func hasScheme(s string) bool {
	i := strings.Index(s, ":")
	if i <= 1 {
		// "C:\..." style drive letters are paths.
		return false
	}

	for _, r := range s[:i] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.') {
			return false
		}
	}

	return true
}
