package quill

import (
	"log/slog"

	"github.com/aretw0/quill/internal/platform"
	"github.com/aretw0/quill/pkg/core"
	"github.com/aretw0/quill/pkg/viewstate"
)

// --- Types ---

type (
	// Note is a public alias for the domain note.
	Note = core.Note
	// ID is a public alias for the note identifier.
	ID = core.ID
	// Color is a public alias for a palette colour.
	Color = core.Color
	// Repository is a public alias for the note repository.
	Repository = core.Repository
	// Store is a public alias for the storage port.
	Store = core.Store
	// Editor is a public alias for the editor controller.
	Editor = viewstate.Editor
	// List is a public alias for the list controller.
	List = viewstate.List
	// Draft is a public alias for an editor buffer snapshot.
	Draft = viewstate.Draft
)

// --- Configuration ---

// Option defines a functional option for configuring Quill.
type Option = platform.Option

// WithStore injects a custom storage adapter.
func WithStore(store core.Store) Option {
	return platform.WithStore(store)
}

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithAdapter selects the storage adapter by name ("fs", "sqlite", "memory").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithDriver selects the SQLite driver ("sqlite" or "sqlite3").
func WithDriver(name string) Option {
	return platform.WithDriver(name)
}

// WithSystemDir sets the hidden metadata directory (e.g. ".quill").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithMustExist ensures the notes directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithReadOnly rejects every write with core.ErrReadOnly.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithWatch re-emits snapshots when note files change on disk.
func WithWatch(enabled bool) Option {
	return platform.WithWatch(enabled)
}

// WithErrorHandler receives failures from background work.
func WithErrorHandler(fn func(error)) Option {
	return platform.WithErrorHandler(fn)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithDevSafety controls the `go run` sandbox.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// --- Factory ---

// New opens the configured store and returns a Repository over it.
// Close the repository to release the store.
func New(uri string, opts ...Option) (*core.Repository, error) {
	return platform.New(uri, opts...)
}

// Init opens and initializes a store explicitly.
func Init(uri string, opts ...Option) (core.Store, error) {
	return platform.Init(uri, opts...)
}

// NewEditor creates an editor drafting a new note.
func NewEditor(repo *core.Repository, opts ...viewstate.Option) *viewstate.Editor {
	return viewstate.NewEditor(repo, opts...)
}

// NewList creates a list controller.
func NewList(repo *core.Repository, opts ...viewstate.Option) *viewstate.List {
	return viewstate.NewList(repo, opts...)
}

// --- Palette ---

// Palette returns the colours in picker order.
func Palette() []core.Color {
	return core.Palette()
}

// ParseColor reads a colour key or name typed by a user.
func ParseColor(s string) (core.Color, error) {
	return core.ParseColor(s)
}

// --- Safety & Utils ---

// ResolvePath determines the actual data path based on safety rules.
func ResolvePath(userPath string, forceTemp bool) string {
	return platform.ResolvePath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindRoot recursively looks upwards for a notes root indicator.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
