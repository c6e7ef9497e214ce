// Package watch reports when an adventure file changes on disk so the
// caller can reload it.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// settleWindow is how long a file must stay quiet before a change is
// reported. Editors tend to emit several events per save.
const settleWindow = 200 * time.Millisecond

// Watcher watches a single file and coalesces rapid event bursts into
// one notification. It registers the parent directory with fsnotify
// because many editors save by renaming a temp file over the target,
// which silently drops a watch placed on the file itself.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	base    string
	changes chan struct{}
	logger  *zap.Logger
}

// New prepares a watcher for path. Events are not delivered until Run
// is called.
func New(path string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(abs)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &Watcher{
		watcher: fw,
		path:    abs,
		base:    filepath.Base(abs),
		changes: make(chan struct{}, 1),
		logger:  logger,
	}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Changes delivers one value per settled burst of modifications to the
// watched file. The channel is closed when Run returns.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Run processes filesystem events until ctx is cancelled or the watcher
// is closed. It returns ctx.Err() on cancellation and nil after Close.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.changes)

	settle := time.NewTimer(settleWindow)
	if !settle.Stop() {
		<-settle.C
	}
	defer settle.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("adventure file event",
				zap.String("op", event.Op.String()),
				zap.String("path", event.Name))
			if pending && !settle.Stop() {
				<-settle.C
			}
			settle.Reset(settleWindow)
			pending = true

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", zap.Error(err))

		case <-settle.C:
			pending = false
			select {
			case w.changes <- struct{}{}:
			default:
			}
		}
	}
}

// Close releases the underlying filesystem watcher. A running Run loop
// returns shortly after.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// relevant reports whether event concerns the watched file. Rename and
// remove are included because save-by-replace shows up as either,
// depending on the editor.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != w.base {
		return false
	}
	const ops = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove
	return event.Op&ops != 0
}
