package fs

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/quill/pkg/core"
)

const debounceWindow = 50 * time.Millisecond

// watchWorker turns file changes in the notes directory into hub
// notifications, so observers also see edits made outside the store.
// Writes made by the store itself come through too; re-publishing an
// unchanged snapshot is harmless.
type watchWorker struct {
	store     *Store
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc
	done      chan struct{}
}

func newWatchWorker(store *Store) *watchWorker {
	return &watchWorker{
		store: store,
		done:  make(chan struct{}),
	}
}

func (w *watchWorker) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(w.store.Path); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.store.Path, err)
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(debounceWindow)
	w.store.setWatcherActive(true)

	// The watcher outlives the Initialize call; only Stop ends it.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	w.cancel = cancel

	lifecycle.Go(runCtx, w.run, lifecycle.WithErrorHandler(func(err error) {
		w.reportError(fmt.Errorf("watcher stopped: %w", err))
	}))
	return nil
}

// Stop ends the loop and waits for in-flight notifications.
func (w *watchWorker) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
}

func (w *watchWorker) run(ctx context.Context) (err error) {
	defer close(w.done)
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if logger := w.store.config.Logger; logger != nil {
				if logger.Enabled(ctx, slog.LevelDebug) {
					logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
				} else {
					logger.Error("watcher panic", "error", err)
				}
			}
		}
	}()
	defer w.store.setWatcherActive(false)
	defer w.watcher.Close()
	defer w.debouncer.stopAndWait()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.handleEvent(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.reportError(wErr)
		}
	}
}

func (w *watchWorker) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	id, ok := resolveID(event.Name)
	if !ok {
		return
	}

	if logger := w.store.config.Logger; logger != nil {
		logger.Debug("note file changed", "id", id, "op", event.Op.String())
	}
	w.debouncer.add(id, func() {
		w.store.bumpSequence(id)
		w.store.hub.Notify(ctx, id)
	})
}

func (w *watchWorker) reportError(err error) {
	if logger := w.store.config.Logger; logger != nil {
		logger.Error("fsnotify error", "error", err)
	}
	if w.store.config.ErrorHandler != nil {
		w.store.config.ErrorHandler(err)
	}
}

// bumpSequence keeps the counter ahead of notes created by hand, so the
// store never hands out an id that already has a file.
func (s *Store) bumpSequence(id core.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id > s.seq.Last() {
		s.seq.state.LastID = id
	}
}

// debouncer coalesces bursts of events per note into one callback.
type debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	timers  map[core.ID]*time.Timer
	wg      sync.WaitGroup
	stopped bool
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{
		window: window,
		timers: make(map[core.ID]*time.Timer),
	}
}

func (d *debouncer) add(id core.ID, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	if t, ok := d.timers[id]; ok && t.Stop() {
		d.wg.Done()
	}
	d.wg.Add(1)
	d.timers[id] = time.AfterFunc(d.window, func() {
		defer d.wg.Done()
		d.mu.Lock()
		delete(d.timers, id)
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			fn()
		}
	})
}

// stopAndWait cancels pending callbacks and waits for running ones.
func (d *debouncer) stopAndWait() {
	d.mu.Lock()
	d.stopped = true
	for id, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, id)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
