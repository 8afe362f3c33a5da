// Package sources fetches external configuration content referenced by
// module sources and configuration sources. Fetches are synchronous; a fetch
// failure surfaces as a build failure to the caller and is never retried
// here. The package also provides a file watcher so hosts can recompose when
// file-backed sources change.
package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Fetcher retrieves the raw content behind a source location.
type Fetcher interface {
	// Fetch returns the content at uri. Implementations should honor
	// context cancellation where the underlying transport supports it.
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// FileFetcher reads sources from the local filesystem. URIs may be plain
// paths or carry a file:// scheme. When Root is set, relative paths resolve
// beneath it.
type FileFetcher struct {
	Root string
}

// NewFileFetcher creates a file fetcher resolving relative paths under root.
// An empty root resolves against the process working directory.
func NewFileFetcher(root string) *FileFetcher {
	return &FileFetcher{Root: root}
}

// Fetch implements Fetcher by reading the file at uri.
func (f *FileFetcher) Fetch(_ context.Context, uri string) ([]byte, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, ErrEmptyURI
	}

	path := strings.TrimPrefix(uri, "file://")
	if f.Root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(f.Root, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, uri, err)
	}
	return data, nil
}

// HTTPFetcher retrieves sources over HTTP(S) with a single GET per fetch.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher creates an HTTP fetcher. A nil client uses
// http.DefaultClient.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{Client: client}
}

// Fetch implements Fetcher by issuing a GET request for uri.
func (f *HTTPFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, ErrEmptyURI
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, uri, err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: %s", ErrHTTPStatus, uri, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, uri, err)
	}
	return data, nil
}

// Router dispatches fetches to scheme-specific fetchers. Scheme-less URIs
// are treated as file paths.
type Router struct {
	schemes map[string]Fetcher
}

// NewRouter creates an empty router. Use WithScheme to register fetchers.
func NewRouter() *Router {
	return &Router{schemes: make(map[string]Fetcher)}
}

// WithScheme registers a fetcher for the given uri scheme and returns the
// router for chaining.
func (r *Router) WithScheme(scheme string, fetcher Fetcher) *Router {
	r.schemes[strings.ToLower(scheme)] = fetcher
	return r
}

// Fetch implements Fetcher by routing to the fetcher registered for the
// uri's scheme.
func (r *Router) Fetch(ctx context.Context, uri string) ([]byte, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, ErrEmptyURI
	}

	scheme := ""
	if parsed, err := url.Parse(uri); err == nil {
		scheme = strings.ToLower(parsed.Scheme)
	}
	if scheme == "" {
		scheme = "file"
	}

	fetcher, ok := r.schemes[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrUnsupportedScheme, scheme, uri)
	}
	return fetcher.Fetch(ctx, uri)
}

// Default returns the fetcher module builders use when none is configured:
// a router with file, http and https schemes wired.
func Default() Fetcher {
	return NewRouter().
		WithScheme("file", NewFileFetcher("")).
		WithScheme("http", NewHTTPFetcher(nil)).
		WithScheme("https", NewHTTPFetcher(nil))
}
