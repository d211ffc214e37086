// Package watcher notices when the index database is rewritten on disk.
package watcher

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"everysearch/internal/domain"
	"everysearch/internal/eventbus"
)

// DefaultDebounce groups the burst of events a single updatedb run produces
const DefaultDebounce = 2 * time.Second

// Watcher publishes IndexChangedEvent when the database file changes
type Watcher struct {
	bus      eventbus.EventBus
	path     string
	debounce time.Duration
	fw       *fsnotify.Watcher

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New watches the directory holding dbPath. The database itself is replaced by
// rename on every update, so the directory is watched rather than the file.
func New(bus eventbus.EventBus, dbPath string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	path := filepath.Clean(dbPath)
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	return &Watcher{
		bus:      bus,
		path:     path,
		debounce: debounce,
		fw:       fw,
		done:     make(chan struct{}),
	}, nil
}

// Start processes events until ctx is cancelled or Close is called
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.loop(ctx)
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return

		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			log.Printf("Index database changed: %s", w.path)
			w.bus.Publish(domain.IndexChangedEvent{Path: w.path})

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Printf("Index watcher error: %v", err)
		}
	}
}

// Close stops the watcher and waits for its goroutine
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		w.wg.Wait()
		err = w.fw.Close()
	})
	return err
}
