package core

import (
	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	StoreType  string `json:"store_type"`
	StoreState any    `json:"store_state,omitempty"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	storeType := "unknown"
	var storeState any
	if comp, ok := r.store.(introspection.Component); ok {
		storeType = comp.ComponentType()
	}
	if in, ok := r.store.(introspection.Introspectable); ok {
		storeState = in.State()
	}

	return RepositoryState{
		StoreType:  storeType,
		StoreState: storeState,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "repository"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
