// Package live implements push-based snapshot streams.
//
// A Feed broadcasts whole snapshots to any number of subscribers. Each
// subscriber keeps only the newest undelivered snapshot, so a slow reader
// never holds up the publisher and always ends up on the latest state.
// A Hub groups feeds per store query (all rows, one row by key) and
// reloads them on mutation.
package live

import (
	"context"
	"sync"

	"github.com/aretw0/lifecycle"
	"github.com/google/uuid"
)

// Feed is a conflating broadcast of snapshots of type T.
type Feed[T any] struct {
	mu     sync.Mutex
	subs   map[string]*subscriber[T]
	done   chan struct{}
	closed bool
	onIdle func()
}

type subscriber[T any] struct {
	mu      sync.Mutex
	pending T
	has     bool
	wake    chan struct{}
}

// NewFeed creates an open feed with no subscribers.
func NewFeed[T any]() *Feed[T] {
	return newFeed[T](nil)
}

func newFeed[T any](onIdle func()) *Feed[T] {
	return &Feed[T]{
		subs:   make(map[string]*subscriber[T]),
		done:   make(chan struct{}),
		onIdle: onIdle,
	}
}

// Subscribe registers a listener whose first value is initial.
// The returned channel is closed when ctx ends or the feed is closed.
func (f *Feed[T]) Subscribe(ctx context.Context, initial T) <-chan T {
	out := make(chan T)

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		close(out)
		return out
	}
	id := uuid.NewString()
	s := &subscriber[T]{wake: make(chan struct{}, 1)}
	s.offer(initial)
	f.subs[id] = s
	f.mu.Unlock()

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		defer f.remove(id)
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-f.done:
				return nil
			case <-s.wake:
			}

			v, ok := s.take()
			if !ok {
				continue
			}

			select {
			case out <- v:
			case <-ctx.Done():
				return nil
			case <-f.done:
				return nil
			}
		}
	})

	return out
}

// Publish hands v to every subscriber, replacing any snapshot they have not
// received yet. It never blocks on readers.
func (f *Feed[T]) Publish(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	for _, s := range f.subs {
		s.offer(v)
	}
}

// Len returns the number of live subscribers.
func (f *Feed[T]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Close ends every subscription. Later calls to Subscribe get a closed channel.
func (f *Feed[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	close(f.done)
}

func (f *Feed[T]) remove(id string) {
	f.mu.Lock()
	delete(f.subs, id)
	idle := len(f.subs) == 0 && !f.closed
	f.mu.Unlock()

	if idle && f.onIdle != nil {
		f.onIdle()
	}
}

func (s *subscriber[T]) offer(v T) {
	s.mu.Lock()
	s.pending = v
	s.has = true
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber[T]) take() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if !s.has {
		return zero, false
	}
	v := s.pending
	s.pending = zero
	s.has = false
	return v, true
}
