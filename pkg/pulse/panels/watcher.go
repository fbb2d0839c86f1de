package panels

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
)

const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads the registry whenever the panels file changes. The
// parent directory is watched so editors that replace the file by rename
// are seen too.
type Watcher struct {
	path     string
	registry *Registry
	logger   logr.Logger
	debounce time.Duration

	watcher   *fsnotify.Watcher
	done      chan struct{}
	started   atomic.Bool
	closeOnce sync.Once
}

func NewWatcher(path string, registry *Registry, logger logr.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve panels file %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{
		path:     abs,
		registry: registry,
		logger:   logger,
		debounce: DefaultDebounce,
		watcher:  fw,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.logger.Info("Watching panels file", "path", w.path)
	w.started.Store(true)
	go w.run(ctx)
	return nil
}

// Close stops watching and waits for the event loop to exit. It is safe
// to call without Start.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.watcher.Close()
		if w.started.Load() {
			<-w.done
		}
	})
	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.V(1).Info("panels file changed", "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error(err, "panels watcher error")

		case <-timerC:
			timerC = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	catalogue, err := Load(w.path)
	if err != nil {
		w.logger.Error(err, "failed to load panels file, keeping current configuration", "path", w.path)
		return
	}
	if err := w.registry.Reload(catalogue); err != nil {
		w.logger.Error(err, "failed to apply panels file", "path", w.path)
	}
}
