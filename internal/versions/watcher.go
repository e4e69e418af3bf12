package versions

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a Store when its data file changes on disk.
type Watcher struct {
	store    *Store
	log      *slog.Logger
	watcher  *fsnotify.Watcher
	debounce time.Duration

	// OnReload, if set, is called after every reload attempt.
	OnReload func(List, error)

	reloadCh chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	wg       sync.WaitGroup
}

func NewWatcher(store *Store, debounce time.Duration, log *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		store:    store,
		log:      log,
		watcher:  fw,
		debounce: debounce,
		reloadCh: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}, nil
}

// Start watches the directory holding the data file. Editors often replace
// files by rename, which a direct file watch would lose.
func (w *Watcher) Start(ctx context.Context) error {
	absPath, err := filepath.Abs(w.store.Path())
	if err != nil {
		return fmt.Errorf("resolve versions path: %w", err)
	}
	dir := filepath.Dir(absPath)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.log.Info("watching versions file", "path", absPath)

	w.wg.Add(2)
	go func() {
		defer w.wg.Done()
		w.watchLoop(ctx, filepath.Base(absPath))
	}()
	go func() {
		defer w.wg.Done()
		w.reloadLoop(ctx)
	}()
	return nil
}

// Stop ends both loops and closes the underlying watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		if err := w.watcher.Close(); err != nil {
			w.log.Error("close versions watcher", "error", err)
		}
	})
	w.wg.Wait()
}

func (w *Watcher) watchLoop(ctx context.Context, name string) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			switch {
			case event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				w.log.Debug("versions file changed", "op", event.Op.String())
				w.trigger()
			case event.Op&fsnotify.Remove != 0:
				w.log.Warn("versions file removed, keeping current list", "file", event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("versions watcher error", "error", err)
		}
	}
}

func (w *Watcher) reloadLoop(ctx context.Context) {
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.reloadCh:
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) trigger() {
	select {
	case w.reloadCh <- struct{}{}:
	default:
	}
}

func (w *Watcher) reload() {
	list, err := w.store.Reload()
	if err != nil {
		w.log.Error("reload versions failed, keeping current list", "error", err)
	} else {
		w.log.Info("versions reloaded", "count", len(list))
	}
	if w.OnReload != nil {
		w.OnReload(list, err)
	}
}
