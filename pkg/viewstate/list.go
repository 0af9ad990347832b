package viewstate

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/aretw0/quill/pkg/core"
	"github.com/aretw0/quill/pkg/live"
)

// List is the live, read-only projection of all notes for display.
type List struct {
	repo *core.Repository
	run  *runner
}

// NewList creates a list controller.
func NewList(repo *core.Repository, opts ...Option) *List {
	return &List{repo: repo, run: newRunner(opts)}
}

// Notes streams every note, newest id first.
func (l *List) Notes(ctx context.Context) (<-chan []core.Note, error) {
	notes, err := l.repo.Notes(ctx)
	if err != nil {
		return nil, err
	}
	return live.Map(ctx, notes, sortByIDDesc), nil
}

// DeleteNote removes n without waiting. Failures go to the error handler.
func (l *List) DeleteNote(ctx context.Context, n core.Note) {
	l.run.async(ctx, "delete-note", func(ctx context.Context) error {
		if err := l.repo.Delete(ctx, n); err != nil {
			return fmt.Errorf("failed to delete note %s: %w", n.ID, err)
		}
		l.run.debug("note deleted from list", "id", n.ID)
		return nil
	})
}

// Wait blocks until every pending delete has finished.
func (l *List) Wait() {
	l.run.wait()
}

// sortByIDDesc restores display order should a store ever break it.
func sortByIDDesc(notes []core.Note) []core.Note {
	less := func(a, b core.Note) int { return cmp.Compare(b.ID, a.ID) }
	if slices.IsSortedFunc(notes, less) {
		return notes
	}
	sorted := slices.Clone(notes)
	slices.SortStableFunc(sorted, less)
	return sorted
}
