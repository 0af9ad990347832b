package platform

import (
	"log/slog"

	"github.com/aretw0/quill/pkg/core"
)

// Adapter names accepted by WithAdapter.
const (
	AdapterFS     = "fs"
	AdapterSQLite = "sqlite"
	AdapterMemory = "memory"
)

// options holds the internal configuration for building a store.
type options struct {
	store        core.Store
	logger       *slog.Logger
	adapter      string
	driver       string
	systemDir    string
	mustExist    bool
	readOnly     bool
	watch        bool
	forceTemp    bool
	devSafety    bool
	errorHandler func(error)
}

// Option defines a functional option for configuring Quill.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter:   AdapterFS,
		devSafety: true,
	}
}

// WithStore injects a ready-made store (e.g. a test double).
// Adapter selection and path handling are skipped.
func WithStore(store core.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithLogger sets the logger handed to the store.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithAdapter selects the storage adapter by name ("fs", "sqlite", "memory").
// Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithDriver selects the SQLite driver: "sqlite" (pure Go, default) or
// "sqlite3" (cgo). Ignored by the other adapters.
func WithDriver(name string) Option {
	return func(o *options) {
		o.driver = name
	}
}

// WithSystemDir sets the metadata directory of the fs adapter.
// Defaults to ".quill".
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.systemDir = name
	}
}

// WithMustExist makes initialization fail when the notes directory is missing.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithReadOnly enables read-only mode.
// In this mode:
// 1. Insert, Update and Delete fail with core.ErrReadOnly.
// 2. The notes directory is never created.
// 3. Dev Safety Lock (go run temp dir) is BYPASSED (uses real path).
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithWatch makes the fs adapter re-emit snapshots when note files change
// outside the process.
func WithWatch(enabled bool) Option {
	return func(o *options) {
		o.watch = enabled
	}
}

// WithErrorHandler registers a callback for failures in background work
// (currently the fs watcher).
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.forceTemp = force
	}
}

// WithDevSafety controls the "Sandbox" safety mechanism when running via `go run`.
// By default (true), Quill re-roots data paths into a temporary directory to
// prevent accidental data loss. Setting this to false allows operating on the
// real filesystem even during `go run`.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}
