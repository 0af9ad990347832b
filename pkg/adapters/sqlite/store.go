// Package sqlite provides a core.Store backed by a SQLite database.
//
// Two drivers are supported: "sqlite" (modernc.org/sqlite, pure Go, the
// default) and "sqlite3" (github.com/mattn/go-sqlite3, requires cgo).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/introspection"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/aretw0/quill/pkg/core"
	"github.com/aretw0/quill/pkg/live"
)

const (
	// DriverModernc is the pure Go driver name.
	DriverModernc = "sqlite"
	// DriverCGO is the mattn/go-sqlite3 driver name.
	DriverCGO = "sqlite3"

	// MemoryPath opens a private in-memory database.
	MemoryPath = ":memory:"
)

const schema = `
CREATE TABLE IF NOT EXISTS notes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    body TEXT NOT NULL,
    color TEXT NOT NULL
);
`

var errNotInitialized = errors.New("sqlite store is not initialized")

// Config holds the configuration for the SQLite store.
type Config struct {
	Path   string // database file, or MemoryPath
	Driver string // DriverModernc (default) or DriverCGO
	Logger *slog.Logger
}

// Store implements core.Store on a single SQLite connection.
type Store struct {
	config Config
	mu     sync.RWMutex
	db     *sql.DB
	hub    *live.Hub[core.ID, core.Record]
}

// NewStore creates a store. Call Initialize before use.
func NewStore(config Config) *Store {
	if config.Driver == "" {
		config.Driver = DriverModernc
	}
	if config.Path == "" {
		config.Path = MemoryPath
	}
	s := &Store{config: config}
	s.hub = live.NewHub(live.Loader[core.ID, core.Record]{
		All: s.list,
		One: s.get,
	}, config.Logger)
	return s
}

// DSN builds the driver-specific connection string for path.
func DSN(driver, path string) string {
	if path == MemoryPath {
		return path
	}
	switch driver {
	case DriverCGO:
		return path + "?_busy_timeout=5000&_journal_mode=WAL"
	default:
		return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	}
}

// Initialize opens the database and ensures the schema exists.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return nil
	}

	if s.config.Path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(s.config.Path), 0755); err != nil {
			return core.NewStorageFault("initialize", fmt.Errorf("failed to create database directory: %w", err))
		}
	}

	db, err := sql.Open(s.config.Driver, DSN(s.config.Driver, s.config.Path))
	if err != nil {
		return core.NewStorageFault("initialize", fmt.Errorf("open database: %w", err))
	}
	// One connection keeps ":memory:" a single database and makes this store
	// the only writer.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return core.NewStorageFault("initialize", fmt.Errorf("ping database: %w", err))
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return core.NewStorageFault("initialize", fmt.Errorf("init schema: %w", err))
	}

	s.db = db
	if s.config.Logger != nil {
		s.config.Logger.Debug("sqlite store ready", "driver", s.config.Driver, "path", s.config.Path)
	}
	return nil
}

// Close ends every open stream and closes the database.
func (s *Store) Close() error {
	s.hub.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) conn() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, errNotInitialized
	}
	return s.db, nil
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
	db, err := s.conn()
	if err != nil {
		return 0, core.NewStorageFault("insert", err)
	}

	res, err := db.ExecContext(ctx,
		`INSERT INTO notes (title, body, color) VALUES (?, ?, ?)`,
		r.Title, r.Body, r.ColorKey)
	if err != nil {
		return 0, core.NewStorageFault("insert", err)
	}
	last, err := res.LastInsertId()
	if err != nil {
		return 0, core.NewStorageFault("insert", err)
	}

	id := core.ID(last)
	if s.config.Logger != nil {
		s.config.Logger.Debug("note inserted", "id", id)
	}
	s.hub.Notify(ctx, id)
	return id, nil
}

func (s *Store) Update(ctx context.Context, r core.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db, err := s.conn()
	if err != nil {
		return core.NewStorageFault("update", err)
	}

	res, err := db.ExecContext(ctx,
		`UPDATE notes SET title = ?, body = ?, color = ? WHERE id = ?`,
		r.Title, r.Body, r.ColorKey, int64(r.ID))
	if err != nil {
		return core.NewStorageFault("update", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil
	}
	s.hub.Notify(ctx, r.ID)
	return nil
}

func (s *Store) Delete(ctx context.Context, r core.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db, err := s.conn()
	if err != nil {
		return core.NewStorageFault("delete", err)
	}

	res, err := db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, int64(r.ID))
	if err != nil {
		return core.NewStorageFault("delete", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil
	}
	s.hub.Notify(ctx, r.ID)
	return nil
}

func (s *Store) list(ctx context.Context) ([]core.Record, error) {
	db, err := s.conn()
	if err != nil {
		return nil, core.NewStorageFault("list", err)
	}

	rows, err := db.QueryContext(ctx, `SELECT id, title, body, color FROM notes ORDER BY id DESC`)
	if err != nil {
		return nil, core.NewStorageFault("list", err)
	}
	defer rows.Close()

	out := []core.Record{}
	for rows.Next() {
		var r core.Record
		var id int64
		if err := rows.Scan(&id, &r.Title, &r.Body, &r.ColorKey); err != nil {
			return nil, core.NewStorageFault("list", fmt.Errorf("scan note: %w", err))
		}
		r.ID = core.ID(id)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageFault("list", err)
	}
	return out, nil
}

func (s *Store) get(ctx context.Context, id core.ID) (*core.Record, error) {
	db, err := s.conn()
	if err != nil {
		return nil, core.NewStorageFault("get", err)
	}

	var r core.Record
	var rowID int64
	err = db.QueryRowContext(ctx,
		`SELECT id, title, body, color FROM notes WHERE id = ?`, int64(id)).
		Scan(&rowID, &r.Title, &r.Body, &r.ColorKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, core.NewStorageFault("get", err)
	}
	r.ID = core.ID(rowID)
	return &r, nil
}

// StoreState exposes internal state for observability.
type StoreState struct {
	Path          string `json:"path"`
	Driver        string `json:"driver"`
	Open          bool   `json:"open"`
	ListObservers int    `json:"list_observers"`
	ObservedIDs   int    `json:"observed_ids"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	open := s.db != nil
	s.mu.RUnlock()

	all, keys := s.hub.Observers()
	return StoreState{
		Path:          s.config.Path,
		Driver:        s.config.Driver,
		Open:          open,
		ListObservers: all,
		ObservedIDs:   keys,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "sqlite"
}

var _ core.Store = (*Store)(nil)
var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
