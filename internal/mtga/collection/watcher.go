package collection

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce coalesces bursts of file events from editors and sync tools.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reports changes to a collection file.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *zap.Logger

	stopOnce sync.Once
	stopChan chan struct{}
}

// NewWatcher creates a watcher for path. A non-positive debounce uses
// DefaultDebounce and a nil logger discards output.
func NewWatcher(path string, debounce time.Duration, logger *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		path:     path,
		debounce: debounce,
		logger:   logger.Named("watcher"),
		stopChan: make(chan struct{}),
	}
}

// Watch blocks until ctx is cancelled or Stop is called, invoking onChange once
// per burst of writes to the file. The parent directory is watched so that
// editors replacing the file by rename are still seen.
func (w *Watcher) Watch(ctx context.Context, onChange func()) (err error) {
	target, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("failed to resolve collection path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch collection directory: %w", err)
	}
	w.logger.Info("watching collection", zap.String("path", target), zap.Duration("debounce", w.debounce))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopChan:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("collection file event", zap.Stringer("op", event.Op))
			timer.Reset(w.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", zap.Error(err))
		case <-timer.C:
			onChange()
		}
	}
}

// Stop ends a running Watch. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
	})
}
