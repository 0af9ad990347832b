package fs

import (
	"github.com/aretw0/introspection"

	"github.com/aretw0/quill/pkg/core"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Path          string  `json:"path"`
	SystemDir     string  `json:"system_dir"`
	ReadOnly      bool    `json:"read_only"`
	Watch         bool    `json:"watch"`
	WatcherActive bool    `json:"watcher_active"`
	LastID        core.ID `json:"last_id"`
	ListObservers int     `json:"list_observers"`
	ObservedIDs   int     `json:"observed_ids"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	lastID := s.seq.Last()
	s.mu.RUnlock()

	s.stateMu.RLock()
	active := s.watcherActive
	s.stateMu.RUnlock()

	all, keys := s.hub.Observers()
	return StoreState{
		Path:          s.Path,
		SystemDir:     s.config.SystemDir,
		ReadOnly:      s.config.ReadOnly,
		Watch:         s.config.Watch,
		WatcherActive: active,
		LastID:        lastID,
		ListObservers: all,
		ObservedIDs:   keys,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "fs"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)

func (s *Store) setWatcherActive(active bool) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.watcherActive = active
}
