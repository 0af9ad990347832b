package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/quill/pkg/live"
)

// Repository is the only component allowed to touch a Store. It converts
// records into domain notes and decides between insert and update.
// It holds no state of its own.
type Repository struct {
	store Store
}

// NewRepository creates a Repository over store.
func NewRepository(store Store) *Repository {
	return &Repository{store: store}
}

// Notes streams every note, ordered by identifier descending.
func (r *Repository) Notes(ctx context.Context) (<-chan []Note, error) {
	records, err := r.store.ObserveAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to observe notes: %w", err)
	}
	return live.Map(ctx, records, toNotes), nil
}

// GetNote streams the note with the given id; nil means it does not exist.
func (r *Repository) GetNote(ctx context.Context, id ID) (<-chan *Note, error) {
	record, err := r.store.ObserveOne(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to observe note %s: %w", id, err)
	}
	return live.Map(ctx, record, toNotePtr), nil
}

// First returns the current value of GetNote and unsubscribes.
// A nil note with a nil error means the note does not exist.
func (r *Repository) First(ctx context.Context, id ID) (*Note, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := r.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}
	n, ok := live.First(ctx, stream)
	if !ok {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("note stream closed before first value")
	}
	return n, nil
}

// Upsert inserts a new note or replaces an existing one, returning the id of
// the row that now holds it.
func (r *Repository) Upsert(ctx context.Context, n Note) (ID, error) {
	id, existing := n.Identity().Existing()
	if !existing {
		newID, err := r.store.Insert(ctx, n.ToRecord())
		if err != nil {
			return 0, fmt.Errorf("failed to insert note: %w", err)
		}
		return newID, nil
	}

	if err := r.store.Update(ctx, n.ToRecord()); err != nil {
		return 0, fmt.Errorf("failed to update note %s: %w", id, err)
	}
	return id, nil
}

// Delete removes a note. Deleting a note that is already gone is fine.
func (r *Repository) Delete(ctx context.Context, n Note) error {
	if err := r.store.Delete(ctx, n.ToRecord()); err != nil {
		return fmt.Errorf("failed to delete note %s: %w", n.ID, err)
	}
	return nil
}

// Close releases the underlying store and ends every open stream.
func (r *Repository) Close() error {
	return r.store.Close()
}

func toNotes(records []Record) []Note {
	notes := make([]Note, len(records))
	for i, rec := range records {
		notes[i] = rec.ToNote()
	}
	return notes
}

func toNotePtr(rec *Record) *Note {
	if rec == nil {
		return nil
	}
	n := rec.ToNote()
	return &n
}
