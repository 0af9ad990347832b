// Package fs provides a core.Store that keeps one Markdown file per note.
//
// Layout:
//
//	{Path}/{id}.md                   frontmatter (title, color) + body
//	{Path}/{SystemDir}/sequence.json identifier counter
package fs

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/quill/pkg/core"
	"github.com/aretw0/quill/pkg/live"
)

const (
	// DefaultSystemDir holds store metadata inside the notes directory.
	DefaultSystemDir = ".quill"
	// NotePattern matches note files by base name.
	NotePattern = "*.md"
	noteExt     = ".md"
)

// Config holds the configuration for the filesystem store.
type Config struct {
	Path         string
	SystemDir    string // e.g. ".quill"
	MustExist    bool
	ReadOnly     bool
	Watch        bool // re-emit snapshots when note files change outside the store
	Logger       *slog.Logger
	ErrorHandler func(error) // receives watcher failures
}

// Store implements core.Store on a directory of Markdown files.
type Store struct {
	Path   string
	config Config

	mu      sync.RWMutex // guards files and seq
	seq     *sequence
	hub     *live.Hub[core.ID, core.Record]
	watcher *watchWorker

	stateMu       sync.RWMutex
	watcherActive bool
}

// NewStore creates a filesystem-backed store. Call Initialize before use.
func NewStore(config Config) *Store {
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	s := &Store{
		Path:   config.Path,
		config: config,
		seq:    newSequence(config.Path, config.SystemDir),
	}
	s.hub = live.NewHub(live.Loader[core.ID, core.Record]{
		All: s.list,
		One: s.get,
	}, config.Logger)
	return s
}

// Initialize prepares the directory, loads the identifier counter and, if
// configured, starts the watcher.
func (s *Store) Initialize(ctx context.Context) error {
	if s.config.MustExist || s.config.ReadOnly {
		info, err := os.Stat(s.Path)
		if os.IsNotExist(err) {
			return core.NewStorageFault("initialize", fmt.Errorf("notes path does not exist: %s", s.Path))
		}
		if err != nil {
			return core.NewStorageFault("initialize", err)
		}
		if !info.IsDir() {
			return core.NewStorageFault("initialize", fmt.Errorf("notes path is not a directory: %s", s.Path))
		}
	} else if err := os.MkdirAll(s.Path, 0755); err != nil {
		return core.NewStorageFault("initialize", fmt.Errorf("failed to create notes directory: %w", err))
	}

	ids, err := s.scanIDs()
	if err != nil {
		return core.NewStorageFault("initialize", err)
	}
	var floor core.ID
	if len(ids) > 0 {
		floor = slices.Max(ids)
	}

	s.mu.Lock()
	err = s.seq.Load(floor)
	s.mu.Unlock()
	if err != nil {
		return core.NewStorageFault("initialize", err)
	}

	if s.config.Watch && s.watcher == nil {
		w := newWatchWorker(s)
		if err := w.Start(ctx); err != nil {
			return core.NewStorageFault("initialize", err)
		}
		s.watcher = w
	}
	return nil
}

// Close stops the watcher and ends every open stream.
func (s *Store) Close() error {
	if s.watcher != nil {
		s.watcher.Stop()
		s.watcher = nil
	}
	s.hub.Close()
	return nil
}

func (s *Store) ObserveAll(ctx context.Context) (<-chan []core.Record, error) {
	return s.hub.ObserveAll(ctx)
}

func (s *Store) ObserveOne(ctx context.Context, id core.ID) (<-chan *core.Record, error) {
	return s.hub.ObserveOne(ctx, id)
}

// Insert reserves the next identifier, then writes the note file.
// The counter is persisted first so a crash can never hand out an id twice.
func (s *Store) Insert(ctx context.Context, r core.Record) (core.ID, error) {
	if s.config.ReadOnly {
		return 0, core.NewStorageFault("insert", core.ErrReadOnly)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	id, err := s.seq.Next()
	if err == nil {
		r.ID = id
		err = s.writeRecord(r)
	}
	s.mu.Unlock()
	if err != nil {
		return 0, core.NewStorageFault("insert", err)
	}

	if s.config.Logger != nil {
		s.config.Logger.Debug("note written", "id", id, "path", s.filename(id))
	}
	s.hub.Notify(ctx, id)
	return id, nil
}

// Update rewrites an existing note file. A missing file is left missing.
func (s *Store) Update(ctx context.Context, r core.Record) error {
	if s.config.ReadOnly {
		return core.NewStorageFault("update", core.ErrReadOnly)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	_, statErr := os.Stat(s.filename(r.ID))
	var err error
	switch {
	case os.IsNotExist(statErr):
		s.mu.Unlock()
		return nil
	case statErr != nil:
		err = statErr
	default:
		err = s.writeRecord(r)
	}
	s.mu.Unlock()
	if err != nil {
		return core.NewStorageFault("update", err)
	}

	s.hub.Notify(ctx, r.ID)
	return nil
}

// Delete removes a note file. Removing a missing file is not an error.
func (s *Store) Delete(ctx context.Context, r core.Record) error {
	if s.config.ReadOnly {
		return core.NewStorageFault("delete", core.ErrReadOnly)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	err := os.Remove(s.filename(r.ID))
	s.mu.Unlock()
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return core.NewStorageFault("delete", err)
	}

	if s.config.Logger != nil {
		s.config.Logger.Debug("note removed", "id", r.ID)
	}
	s.hub.Notify(ctx, r.ID)
	return nil
}

func (s *Store) filename(id core.ID) string {
	return filepath.Join(s.Path, id.String()+noteExt)
}

func (s *Store) writeRecord(r core.Record) error {
	data, err := encodeRecord(r)
	if err != nil {
		return err
	}
	return replaceFile(s.filename(r.ID), data)
}

// resolveID maps a file name to a note id. ok is false for anything that is
// not a note file (temp files, system files, foreign files).
func resolveID(name string) (core.ID, bool) {
	base := filepath.Base(name)
	if matched, err := doublestar.Match(NotePattern, base); err != nil || !matched {
		return 0, false
	}
	id, err := core.ParseID(strings.TrimSuffix(base, noteExt))
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func (s *Store) scanIDs() ([]core.ID, error) {
	entries, err := os.ReadDir(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read notes directory: %w", err)
	}

	ids := make([]core.ID, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if id, ok := resolveID(e.Name()); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *Store) list(ctx context.Context) ([]core.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids, err := s.scanIDs()
	if err != nil {
		return nil, core.NewStorageFault("list", err)
	}

	out := make([]core.Record, 0, len(ids))
	for _, id := range ids {
		r, err := s.read(id)
		if err != nil {
			return nil, core.NewStorageFault("list", err)
		}
		if r != nil {
			out = append(out, *r)
		}
	}
	slices.SortFunc(out, func(a, b core.Record) int {
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (s *Store) get(ctx context.Context, id core.ID) (*core.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, err := s.read(id)
	if err != nil {
		return nil, core.NewStorageFault("get", err)
	}
	return r, nil
}

func (s *Store) read(id core.ID) (*core.Record, error) {
	f, err := os.Open(s.filename(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := decodeRecord(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse note %s: %w", id, err)
	}
	r.ID = id
	return &r, nil
}

var _ core.Store = (*Store)(nil)
