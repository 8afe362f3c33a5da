package sources

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Change describes one observed modification to a watched source file.
type Change struct {
	// Path is the file that changed.
	Path string
	// Op names the filesystem operation (write, create, remove, rename).
	Op string
}

// Watcher signals when file-backed source content changes so hosts can
// recompose. It only notifies; fetching stays synchronous and on-demand.
type Watcher struct {
	fs      *fsnotify.Watcher
	changes chan Change
	errs    chan error
	done    chan struct{}
	once    sync.Once
}

// NewWatcher watches the given files or directories. At least one path is
// required.
func NewWatcher(paths ...string) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, ErrNoWatchPaths
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	for _, path := range paths {
		if err := fs.Add(path); err != nil {
			fs.Close()
			return nil, fmt.Errorf("watch %s: %w", path, err)
		}
	}

	w := &Watcher{
		fs:      fs,
		changes: make(chan Change, 16),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.changes)
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			select {
			case w.changes <- Change{Path: event.Name, Op: event.Op.String()}:
			case <-w.done:
				return
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}

// Changes returns the channel of observed source changes. The channel closes
// when the watcher is closed.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Errors returns the channel of watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
	})
	return err
}
