package viewstate

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/quill/pkg/core"
	"github.com/aretw0/quill/pkg/live"
)

// Draft is a snapshot of the editor buffer.
type Draft struct {
	Identity core.Identity
	Title    string
	Body     string
	Color    core.Color
}

func emptyDraft(identity core.Identity) Draft {
	return Draft{Identity: identity, Color: core.DefaultColor}
}

// Note builds the record that Save persists: the bound id (or none) plus the
// buffer, with a blank title replaced by Untitled.
func (d Draft) Note() core.Note {
	return core.Note{
		ID:    d.Identity.ID(),
		Title: SavedTitle(d.Title),
		Body:  d.Body,
		Color: d.Color,
	}
}

// Editor is the transient edit buffer for one note.
//
// It is either drafting a new note (no id bound) or drafting an existing one.
// Buffer edits are pure replacements; nothing reaches storage until Save.
// One Editor per note is assumed; two editors saving the same id race.
type Editor struct {
	repo *core.Repository
	run  *runner

	mu    sync.Mutex
	draft Draft
	gen   uint64 // bumped on every Enter*; stale loads are discarded
	feed  *live.Feed[Draft]
}

// NewEditor creates an editor drafting a new note.
func NewEditor(repo *core.Repository, opts ...Option) *Editor {
	return &Editor{
		repo:  repo,
		run:   newRunner(opts),
		draft: emptyDraft(core.NewIdentity()),
		feed:  live.NewFeed[Draft](),
	}
}

// EnterNew resets the buffer to an empty draft with the default colour.
func (e *Editor) EnterNew() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
	e.setLocked(emptyDraft(core.NewIdentity()))
}

// EnterExisting binds id and seeds the buffer from the note's current value.
// If the note does not exist the buffer is left empty, but id stays bound.
func (e *Editor) EnterExisting(ctx context.Context, id core.ID) error {
	gen := e.bind(id)

	n, err := e.repo.First(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load note %s: %w", id, err)
	}
	e.seed(gen, id, n)
	return nil
}

// EnterExistingAsync is EnterExisting off the caller's goroutine. onLoaded,
// if set, runs after the buffer has been seeded.
func (e *Editor) EnterExistingAsync(ctx context.Context, id core.ID, onLoaded func()) {
	gen := e.bind(id)

	e.run.async(ctx, "enter-existing", func(ctx context.Context) error {
		n, err := e.repo.First(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load note %s: %w", id, err)
		}
		e.seed(gen, id, n)
		if onLoaded != nil {
			onLoaded()
		}
		return nil
	})
}

func (e *Editor) bind(id core.ID) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
	e.setLocked(emptyDraft(core.ExistingIdentity(id)))
	return e.gen
}

func (e *Editor) seed(gen uint64, id core.ID, n *core.Note) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		e.run.debug("discarding stale load", "id", id)
		return
	}

	d := emptyDraft(core.ExistingIdentity(id))
	if n != nil {
		d.Title, d.Body, d.Color = n.Title, n.Body, n.Color
	} else {
		e.run.debug("note not found, editing empty buffer", "id", id)
	}
	e.setLocked(d)
}

// SetTitle replaces the title.
func (e *Editor) SetTitle(title string) {
	e.update(func(d *Draft) { d.Title = title })
}

// SetBody replaces the body.
func (e *Editor) SetBody(body string) {
	e.update(func(d *Draft) { d.Body = body })
}

// SetColor replaces the colour.
func (e *Editor) SetColor(c core.Color) {
	e.update(func(d *Draft) { d.Color = c })
}

// AppendBullet adds a bullet line at the end of the body.
func (e *Editor) AppendBullet() {
	e.update(func(d *Draft) { d.Body = AppendBullet(d.Body) })
}

// Save persists the buffer and returns the note's id. The first save of a
// new draft binds the assigned id, so later saves update the same note.
// The buffer title is left as typed even when Untitled was persisted.
func (e *Editor) Save(ctx context.Context) (core.ID, error) {
	e.mu.Lock()
	d, gen := e.draft, e.gen
	e.mu.Unlock()

	id, err := e.repo.Upsert(ctx, d.Note())
	if err != nil {
		return 0, fmt.Errorf("failed to save note: %w", err)
	}

	if d.Identity.IsNew() {
		e.mu.Lock()
		if gen == e.gen && e.draft.Identity.IsNew() {
			e.draft.Identity = core.ExistingIdentity(id)
			e.feed.Publish(e.draft)
		}
		e.mu.Unlock()
	}
	e.run.debug("note saved", "id", id)
	return id, nil
}

// SaveAsync runs Save off the caller's goroutine and calls onSaved with the
// resulting id on success.
func (e *Editor) SaveAsync(ctx context.Context, onSaved func(core.ID)) {
	e.run.async(ctx, "save", func(ctx context.Context) error {
		id, err := e.Save(ctx)
		if err != nil {
			return err
		}
		if onSaved != nil {
			onSaved(id)
		}
		return nil
	})
}

// Delete removes the bound note. Without a bound id it does nothing.
func (e *Editor) Delete(ctx context.Context) error {
	_, err := e.delete(ctx)
	return err
}

// DeleteAsync runs Delete off the caller's goroutine. onDeleted runs only if
// a note was actually bound and the delete succeeded.
func (e *Editor) DeleteAsync(ctx context.Context, onDeleted func()) {
	e.run.async(ctx, "delete", func(ctx context.Context) error {
		deleted, err := e.delete(ctx)
		if err != nil {
			return err
		}
		if deleted && onDeleted != nil {
			onDeleted()
		}
		return nil
	})
}

func (e *Editor) delete(ctx context.Context) (bool, error) {
	e.mu.Lock()
	d := e.draft
	e.mu.Unlock()

	id, ok := d.Identity.Existing()
	if !ok {
		return false, nil
	}
	n := core.Note{ID: id, Title: d.Title, Body: d.Body, Color: d.Color}
	if err := e.repo.Delete(ctx, n); err != nil {
		return false, fmt.Errorf("failed to delete note %s: %w", id, err)
	}
	e.run.debug("note deleted", "id", id)
	return true, nil
}

// Draft returns the current buffer.
func (e *Editor) Draft() Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// Watch streams buffer snapshots, starting with the current one, until ctx
// ends or the editor is closed. Slow readers only see the latest snapshot.
func (e *Editor) Watch(ctx context.Context) <-chan Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.feed.Subscribe(ctx, e.draft)
}

// Wait blocks until every asynchronous command has finished.
func (e *Editor) Wait() {
	e.run.wait()
}

// Close waits for pending commands and ends every Watch stream.
func (e *Editor) Close() {
	e.Wait()
	e.feed.Close()
}

func (e *Editor) update(fn func(*Draft)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d := e.draft
	fn(&d)
	e.setLocked(d)
}

func (e *Editor) setLocked(d Draft) {
	e.draft = d
	e.feed.Publish(d)
}
