package sources

import (
	"errors"
)

// Source fetching errors
var (
	ErrEmptyURI          = errors.New("source uri is empty")
	ErrUnsupportedScheme = errors.New("no fetcher registered for uri scheme")
	ErrFetchFailed       = errors.New("failed to fetch source content")
	ErrHTTPStatus        = errors.New("source returned non-success status")

	// Watcher errors
	ErrWatcherClosed = errors.New("source watcher is closed")
	ErrNoWatchPaths  = errors.New("no paths to watch")
)
