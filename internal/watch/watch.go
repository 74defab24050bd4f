// Package watch re-runs a callback when a single file changes on disk. The
// file's directory is watched rather than the file itself, so editors that
// save by writing a temporary file and renaming it over the original are
// still noticed. Bursts of events are debounced.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/mcncl/shapeview/internal/logging"
)

// DefaultDebounce is how long a file must stay quiet before onChange fires.
const DefaultDebounce = 50 * time.Millisecond

// Watcher wraps an fsnotify watcher.
type Watcher struct {
	fw       *fsnotify.Watcher
	logger   *zap.Logger
	debounce time.Duration

	done    chan struct{}
	stopped bool
	mu      sync.Mutex
}

// New creates a Watcher.
func New(logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{
		fw:       fw,
		logger:   logging.OrNop(logger),
		debounce: DefaultDebounce,
		done:     make(chan struct{}),
	}, nil
}

// Watch calls onChange with the absolute path of file each time it is
// written or recreated. It blocks until ctx is done or the watcher is closed,
// and calls onChange from the calling goroutine.
func (w *Watcher) Watch(ctx context.Context, file string, onChange func(path string)) error {
	target, err := filepath.Abs(file)
	if err != nil {
		return fmt.Errorf("failed to resolve '%s': %w", file, err)
	}
	if err := w.fw.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch '%s': %w", file, err)
	}
	w.logger.Debug("watching file", zap.String("path", target))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-w.done:
			return nil

		case event, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.logger.Debug("file event", zap.String("op", event.Op.String()))

			// Restart the quiet period on every event of a burst.
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			onChange(target)
		}
	}
}

// Close stops any running Watch and releases the watcher. Safe to call
// multiple times.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)
	return w.fw.Close()
}
