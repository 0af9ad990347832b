package live

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrClosed is returned when observing through a closed hub.
var ErrClosed = errors.New("hub is closed")

// Loader reads fresh snapshots from the underlying medium.
// One returns nil when the key does not exist.
type Loader[K comparable, R any] struct {
	All func(ctx context.Context) ([]R, error)
	One func(ctx context.Context, key K) (*R, error)
}

// Hub keeps one feed for the "all rows" query and one feed per observed key.
// Stores call Notify after every successful write; the hub reloads only the
// queries that currently have observers.
//
// Subscribing and notifying are serialised, so an observer either sees the
// state after a write in its first snapshot or receives it as an update.
type Hub[K comparable, R any] struct {
	mu     sync.Mutex
	load   Loader[K, R]
	all    *Feed[[]R]
	byKey  map[K]*Feed[*R]
	logger *slog.Logger
	closed bool
}

// NewHub creates a hub backed by load.
func NewHub[K comparable, R any](load Loader[K, R], logger *slog.Logger) *Hub[K, R] {
	return &Hub[K, R]{
		load:   load,
		all:    NewFeed[[]R](),
		byKey:  make(map[K]*Feed[*R]),
		logger: logger,
	}
}

// ObserveAll subscribes to the full list.
func (h *Hub[K, R]) ObserveAll(ctx context.Context) (<-chan []R, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}

	snap, err := h.load.All(ctx)
	if err != nil {
		return nil, err
	}
	return h.all.Subscribe(ctx, snap), nil
}

// ObserveOne subscribes to a single key.
func (h *Hub[K, R]) ObserveOne(ctx context.Context, key K) (<-chan *R, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}

	snap, err := h.load.One(ctx, key)
	if err != nil {
		return nil, err
	}

	f, ok := h.byKey[key]
	if !ok {
		f = newFeed[*R](func() { h.dropIdle(key) })
		h.byKey[key] = f
	}
	return f.Subscribe(ctx, snap), nil
}

// Notify reloads the list and the given keys for their current observers.
// Load failures are logged; the write that triggered them already happened.
func (h *Hub[K, R]) Notify(ctx context.Context, keys ...K) {
	ctx = context.WithoutCancel(ctx)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	if h.all.Len() > 0 {
		if snap, err := h.load.All(ctx); err != nil {
			h.logError("reload all failed", err)
		} else {
			h.all.Publish(snap)
		}
	}

	for _, key := range keys {
		f, ok := h.byKey[key]
		if !ok || f.Len() == 0 {
			continue
		}
		snap, err := h.load.One(ctx, key)
		if err != nil {
			h.logError("reload one failed", err, "key", key)
			continue
		}
		f.Publish(snap)
	}
}

// NotifyAll reloads every observed query. Used when the medium changed in
// ways the store did not originate.
func (h *Hub[K, R]) NotifyAll(ctx context.Context) {
	h.mu.Lock()
	keys := make([]K, 0, len(h.byKey))
	for k := range h.byKey {
		keys = append(keys, k)
	}
	h.mu.Unlock()

	h.Notify(ctx, keys...)
}

// Observers returns the number of list observers and the number of keys
// with at least one observer.
func (h *Hub[K, R]) Observers() (all int, keys int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.all.Len(), len(h.byKey)
}

// Close ends every stream.
func (h *Hub[K, R]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	h.all.Close()
	for k, f := range h.byKey {
		f.Close()
		delete(h.byKey, k)
	}
}

func (h *Hub[K, R]) dropIdle(key K) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if f, ok := h.byKey[key]; ok && f.Len() == 0 {
		delete(h.byKey, key)
		if h.logger != nil {
			h.logger.Debug("released observer registry entry", "key", key)
		}
	}
}

func (h *Hub[K, R]) logError(msg string, err error, args ...any) {
	if h.logger == nil {
		return
	}
	h.logger.Error(msg, append([]any{"error", err}, args...)...)
}
