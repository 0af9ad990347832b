// Package memory provides an ephemeral core.Store kept in process memory.
package memory

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/introspection"

	"github.com/aretw0/quill/pkg/core"
	"github.com/aretw0/quill/pkg/live"
)

// Store implements core.Store with a map and a monotonic id counter.
// Identifiers are never reused.
type Store struct {
	mu     sync.RWMutex
	rows   map[core.ID]core.Record
	lastID core.ID
	hub    *live.Hub[core.ID, core.Record]
	logger *slog.Logger
}

// NewStore creates an empty store.
func NewStore(logger *slog.Logger) *Store {
	s := &Store{
		rows:   make(map[core.ID]core.Record),
		logger: logger,
	}
	s.hub = live.NewHub(live.Loader[core.ID, core.Record]{
		All: s.list,
		One: s.get,
	}, logger)
	return s
}

// Initialize is a no-op; memory is always ready.
func (s *Store) Initialize(ctx context.Context) error { return nil }

// Close ends every open stream.
func (s *Store) Close() error {
	s.hub.Close()
	return nil
}

func (s *Store) ObserveAll(ctx context.Context) (<-chan []core.Record, error) {
	return s.hub.ObserveAll(ctx)
}

func (s *Store) ObserveOne(ctx context.Context, id core.ID) (<-chan *core.Record, error) {
	return s.hub.ObserveOne(ctx, id)
}

func (s *Store) Insert(ctx context.Context, r core.Record) (core.ID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.lastID++
	r.ID = s.lastID
	s.rows[r.ID] = r
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Debug("note inserted", "id", r.ID)
	}
	s.hub.Notify(ctx, r.ID)
	return r.ID, nil
}

func (s *Store) Update(ctx context.Context, r core.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	_, ok := s.rows[r.ID]
	if ok {
		s.rows[r.ID] = r
	}
	s.mu.Unlock()

	if !ok {
		return nil
	}
	s.hub.Notify(ctx, r.ID)
	return nil
}

func (s *Store) Delete(ctx context.Context, r core.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	_, ok := s.rows[r.ID]
	delete(s.rows, r.ID)
	s.mu.Unlock()

	if !ok {
		return nil
	}
	s.hub.Notify(ctx, r.ID)
	return nil
}

func (s *Store) list(ctx context.Context) ([]core.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Record, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b core.Record) int {
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (s *Store) get(ctx context.Context, id core.ID) (*core.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// StoreState exposes internal state for observability.
type StoreState struct {
	Rows          int     `json:"rows"`
	LastID        core.ID `json:"last_id"`
	ListObservers int     `json:"list_observers"`
	ObservedIDs   int     `json:"observed_ids"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	rows, last := len(s.rows), s.lastID
	s.mu.RUnlock()

	all, keys := s.hub.Observers()
	return StoreState{
		Rows:          rows,
		LastID:        last,
		ListObservers: all,
		ObservedIDs:   keys,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "memory"
}

var _ core.Store = (*Store)(nil)
var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
