package file

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/niemi-bil/infoflex-bridge/internal/core/ports/driven"
	"github.com/niemi-bil/infoflex-bridge/internal/logger"
)

// reloadDelay coalesces the burst of events editors emit on save.
const reloadDelay = 250 * time.Millisecond

// Watcher reloads a ConfigStore when its file changes and then calls the
// registered callbacks.
type Watcher struct {
	store    driven.ConfigStore
	onReload []func()
	delay    time.Duration
}

// NewWatcher creates a watcher for store. Callbacks run after each
// successful reload, in order, on the watcher goroutine.
func NewWatcher(store driven.ConfigStore, onReload ...func()) *Watcher {
	return &Watcher{
		store:    store,
		onReload: onReload,
		delay:    reloadDelay,
	}
}

// Run watches until ctx is cancelled. The parent directory is watched
// because editors often replace the file instead of writing it in place.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	path := filepath.Clean(w.store.Path())
	if err := fw.Add(filepath.Dir(path)); err != nil {
		return err
	}

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
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
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.delay)
			} else {
				timer.Reset(w.delay)
			}
			timerCh = timer.C
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher: %v", err)
		case <-timerCh:
			timerCh = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	if err := w.store.Load(); err != nil {
		logger.Warn("config reload failed, keeping previous values: %v", err)
		return
	}
	logger.Info("configuration reloaded from %s", w.store.Path())
	for _, fn := range w.onReload {
		fn()
	}
}
