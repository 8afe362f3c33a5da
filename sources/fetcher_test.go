package sources

import (
	"context"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileFetcherResolvesRelativeToRoot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cfg.yaml", "key: value\n")

	data, err := NewFileFetcher(dir).Fetch(context.Background(), "cfg.yaml")
	require.NoError(t, err)
	assert.Equal(t, "key: value\n", string(data))
}

func TestFileFetcherStripsFileScheme(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cfg.yaml", "key: value\n")

	data, err := NewFileFetcher(dir).Fetch(context.Background(), "file://cfg.yaml")
	require.NoError(t, err)
	assert.Equal(t, "key: value\n", string(data))

	data, err = NewFileFetcher("").Fetch(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, "key: value\n", string(data))
}

func TestFileFetcherAbsolutePathIgnoresRoot(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cfg.yaml", "key: value\n")

	data, err := NewFileFetcher("/somewhere/else").Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "key: value\n", string(data))
}

func TestFileFetcherMissingFile(t *testing.T) {
	_, err := NewFileFetcher(t.TempDir()).Fetch(context.Background(), "missing.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "missing.yaml")
}

func TestFileFetcherEmptyURI(t *testing.T) {
	_, err := NewFileFetcher("").Fetch(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyURI)
}

func TestHTTPFetcherFetches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{"key":"value"}`))
	}))
	defer server.Close()

	data, err := NewHTTPFetcher(server.Client()).Fetch(context.Background(), server.URL+"/modules.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"value"}`, string(data))
}

func TestHTTPFetcherRejectsNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := NewHTTPFetcher(server.Client()).Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHTTPStatus)
	assert.Contains(t, err.Error(), "404")
}

func TestHTTPFetcherHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTPFetcher(server.Client()).Fetch(ctx, server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, context.Canceled)
}

// memFetcher serves fixed content for router tests.
type memFetcher struct {
	content string
}

func (f *memFetcher) Fetch(context.Context, string) ([]byte, error) {
	return []byte(f.content), nil
}

func TestRouterDispatchesByScheme(t *testing.T) {
	router := NewRouter().
		WithScheme("mem", &memFetcher{content: "from mem"}).
		WithScheme("file", &memFetcher{content: "from file"})

	data, err := router.Fetch(context.Background(), "mem://anything")
	require.NoError(t, err)
	assert.Equal(t, "from mem", string(data))
}

func TestRouterSchemelessURIsUseFile(t *testing.T) {
	router := NewRouter().WithScheme("file", &memFetcher{content: "from file"})

	data, err := router.Fetch(context.Background(), "relative/path.yaml")
	require.NoError(t, err)
	assert.Equal(t, "from file", string(data))
}

func TestRouterUnknownScheme(t *testing.T) {
	_, err := NewRouter().Fetch(context.Background(), "ftp://example.com/cfg.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
	assert.Contains(t, err.Error(), "ftp")
}

func TestRouterEmptyURI(t *testing.T) {
	_, err := NewRouter().Fetch(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyURI)
}

func TestDefaultRouterCoversCommonSchemes(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cfg.yaml", "key: value\n")

	data, err := Default().Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "key: value\n", string(data))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("remote"))
	}))
	defer server.Close()

	data, err = Default().Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "remote", string(data))
}
