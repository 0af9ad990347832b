package viewstate_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quill/pkg/adapters/memory"
	"github.com/aretw0/quill/pkg/core"
	"github.com/aretw0/quill/pkg/viewstate"
)

func newRepo(t *testing.T) *core.Repository {
	t.Helper()
	store := memory.NewStore(nil)
	t.Cleanup(func() { _ = store.Close() })
	return core.NewRepository(store)
}

func TestEditor_NewDraft(t *testing.T) {
	e := viewstate.NewEditor(newRepo(t))
	defer e.Close()

	d := e.Draft()
	assert.True(t, d.Identity.IsNew())
	assert.Empty(t, d.Title)
	assert.Empty(t, d.Body)
	assert.Equal(t, core.Yellow, d.Color)
}

func TestEditor_SaveBlankTitleAsUntitled(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	e := viewstate.NewEditor(repo)
	defer e.Close()

	e.EnterNew()
	e.SetTitle("   ")
	e.SetBody("milk")
	e.SetColor(core.Pink)

	id, err := e.Save(ctx)
	require.NoError(t, err)

	n, err := repo.First(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, core.Note{ID: id, Title: viewstate.Untitled, Body: "milk", Color: core.Pink}, *n)
	assert.Equal(t, "   ", e.Draft().Title, "buffer keeps what was typed")
}

func TestEditor_FirstSaveBindsID(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	repo := newRepo(t)
	e := viewstate.NewEditor(repo)
	defer e.Close()

	e.SetTitle("Plan")
	first, err := e.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, e.Draft().Identity.ID())

	e.SetBody("step one")
	second, err := e.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	ch, err := repo.Notes(ctx)
	require.NoError(t, err)
	notes := <-ch
	require.Len(t, notes, 1)
	assert.Equal(t, "step one", notes[0].Body)
}

func TestEditor_EnterExisting(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	id, err := repo.Upsert(ctx, core.Note{Title: "Groceries", Body: "• milk", Color: core.Green})
	require.NoError(t, err)

	e := viewstate.NewEditor(repo)
	defer e.Close()
	require.NoError(t, e.EnterExisting(ctx, id))

	d := e.Draft()
	assert.Equal(t, core.ExistingIdentity(id), d.Identity)
	assert.Equal(t, "Groceries", d.Title)
	assert.Equal(t, "• milk", d.Body)
	assert.Equal(t, core.Green, d.Color)

	e.AppendBullet()
	e.SetBody(e.Draft().Body + "eggs")
	again, err := e.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	n, err := repo.First(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "• milk\n• eggs", n.Body)
}

func TestEditor_EnterExistingDeleted(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	for i := 0; i < 5; i++ {
		_, err := repo.Upsert(ctx, core.Note{Title: "n"})
		require.NoError(t, err)
	}
	require.NoError(t, repo.Delete(ctx, core.Note{ID: 5}))

	e := viewstate.NewEditor(repo)
	defer e.Close()
	e.SetTitle("leftover")

	require.NoError(t, e.EnterExisting(ctx, 5))

	d := e.Draft()
	assert.Equal(t, core.ExistingIdentity(5), d.Identity, "id stays bound")
	assert.Empty(t, d.Title)
	assert.Empty(t, d.Body)
	assert.Equal(t, core.DefaultColor, d.Color)

	// Saving a vanished note updates nothing and keeps the id.
	id, err := e.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.ID(5), id)
	n, err := repo.First(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, n)
}

func TestEditor_EnterExistingAsync(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	id, err := repo.Upsert(ctx, core.Note{Title: "async", Color: core.LightBlue})
	require.NoError(t, err)

	e := viewstate.NewEditor(repo)
	defer e.Close()

	loaded := make(chan struct{})
	e.EnterExistingAsync(ctx, id, func() { close(loaded) })
	assert.Equal(t, id, e.Draft().Identity.ID(), "id binds immediately")

	select {
	case <-loaded:
	case <-time.After(time.Second):
		t.Fatal("load did not finish")
	}
	assert.Equal(t, "async", e.Draft().Title)
	assert.Equal(t, core.LightBlue, e.Draft().Color)
}

func TestEditor_StaleLoadIsDiscarded(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	id, err := repo.Upsert(ctx, core.Note{Title: "old"})
	require.NoError(t, err)

	e := viewstate.NewEditor(repo)
	defer e.Close()

	e.EnterExistingAsync(ctx, id, nil)
	e.EnterNew()
	e.SetTitle("fresh")
	e.Wait()

	d := e.Draft()
	assert.True(t, d.Identity.IsNew())
	assert.Equal(t, "fresh", d.Title)
}

func TestEditor_SaveAsync(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	e := viewstate.NewEditor(repo)
	defer e.Close()

	var got core.ID
	e.SetTitle("bg")
	e.SaveAsync(ctx, func(id core.ID) { got = id })
	e.Wait()

	assert.Equal(t, core.ID(1), got)
}

func TestEditor_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	t.Run("No-op without id", func(t *testing.T) {
		e := viewstate.NewEditor(repo)
		defer e.Close()

		called := false
		e.DeleteAsync(ctx, func() { called = true })
		e.Wait()
		assert.False(t, called)
		assert.NoError(t, e.Delete(ctx))
	})

	t.Run("Deletes bound note", func(t *testing.T) {
		id, err := repo.Upsert(ctx, core.Note{Title: "bye"})
		require.NoError(t, err)

		e := viewstate.NewEditor(repo)
		defer e.Close()
		require.NoError(t, e.EnterExisting(ctx, id))

		called := false
		e.DeleteAsync(ctx, func() { called = true })
		e.Wait()
		assert.True(t, called)

		n, err := repo.First(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, n)

		// A second delete is harmless.
		assert.NoError(t, e.Delete(ctx))
	})
}

// failingStore rejects every write.
type failingStore struct {
	*memory.Store
}

var errDiskFull = core.NewStorageFault("insert", errors.New("disk full"))

func (failingStore) Insert(context.Context, core.Record) (core.ID, error) { return 0, errDiskFull }
func (failingStore) Update(context.Context, core.Record) error           { return errDiskFull }
func (failingStore) Delete(context.Context, core.Record) error           { return errDiskFull }

func TestEditor_AsyncErrorsReachHandler(t *testing.T) {
	ctx := context.Background()
	repo := core.NewRepository(failingStore{memory.NewStore(nil)})

	var mu sync.Mutex
	var errs []error
	e := viewstate.NewEditor(repo, viewstate.WithErrorHandler(func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}))
	defer e.Close()

	saved := false
	e.SaveAsync(ctx, func(core.ID) { saved = true })
	e.Wait()

	assert.False(t, saved)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], core.ErrStorageFault)

	_, err := e.Save(ctx)
	assert.ErrorIs(t, err, core.ErrStorageFault)
	assert.True(t, e.Draft().Identity.IsNew(), "failed save binds nothing")
}

func TestEditor_Watch(t *testing.T) {
	e := viewstate.NewEditor(newRepo(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := e.Watch(ctx)
	first := <-ch
	assert.Empty(t, first.Title)

	e.SetTitle("typed")
	require.Eventually(t, func() bool {
		select {
		case d := <-ch:
			return d.Title == "typed"
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	e.Close()
	for range ch {
	}
}
