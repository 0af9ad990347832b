package platform_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quill/internal/platform"
	"github.com/aretw0/quill/pkg/adapters/fs"
	"github.com/aretw0/quill/pkg/adapters/memory"
	"github.com/aretw0/quill/pkg/adapters/sqlite"
	"github.com/aretw0/quill/pkg/core"
)

func TestInit(t *testing.T) {
	t.Run("FS Creates Directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "notes")

		store, err := platform.Init(dir)
		require.NoError(t, err)
		defer store.Close()

		fsStore, ok := store.(*fs.Store)
		require.True(t, ok, "expected fs store")
		assert.Equal(t, dir, fsStore.Path)
		assert.DirExists(t, dir)
	})

	t.Run("FS MustExist Fails if Directory Missing", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "missing")

		_, err := platform.Init(dir, platform.WithMustExist(true))
		assert.ErrorIs(t, err, core.ErrStorageFault)
	})

	t.Run("FS ReadOnly Rejects Writes", func(t *testing.T) {
		dir := t.TempDir()

		store, err := platform.Init(dir, platform.WithReadOnly(true))
		require.NoError(t, err)
		defer store.Close()

		_, err = store.Insert(context.Background(), core.Record{Title: "x"})
		assert.ErrorIs(t, err, core.ErrReadOnly)
	})

	t.Run("FS Watch", func(t *testing.T) {
		store, err := platform.Init(t.TempDir(), platform.WithWatch(true))
		require.NoError(t, err)
		defer store.Close()

		assert.True(t, store.(*fs.Store).State().(fs.StoreState).WatcherActive)
	})

	t.Run("SQLite File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "db", "notes.db")

		store, err := platform.Init(path, platform.WithAdapter(platform.AdapterSQLite))
		require.NoError(t, err)
		defer store.Close()

		st := store.(*sqlite.Store).State().(sqlite.StoreState)
		assert.Equal(t, path, st.Path)
		assert.Equal(t, sqlite.DriverModernc, st.Driver)
		assert.FileExists(t, path)
	})

	t.Run("SQLite Memory", func(t *testing.T) {
		store, err := platform.Init(sqlite.MemoryPath, platform.WithAdapter(platform.AdapterSQLite))
		require.NoError(t, err)
		defer store.Close()

		id, err := store.Insert(context.Background(), core.Record{Title: "x"})
		require.NoError(t, err)
		assert.Equal(t, core.ID(1), id)
	})

	t.Run("Memory", func(t *testing.T) {
		store, err := platform.Init("", platform.WithAdapter(platform.AdapterMemory))
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &memory.Store{}, store)
	})

	t.Run("Injected Store Wins", func(t *testing.T) {
		injected := memory.NewStore(nil)
		defer injected.Close()

		store, err := platform.Init("ignored", platform.WithAdapter("nope"), platform.WithStore(injected))
		require.NoError(t, err)
		assert.Same(t, injected, store)
	})

	t.Run("Unknown Adapter", func(t *testing.T) {
		_, err := platform.Init("", platform.WithAdapter("postgres"))
		assert.ErrorContains(t, err, "unknown adapter")
	})
}

func TestInit_DevSandbox(t *testing.T) {
	// Running under "go test" counts as a dev run; relative paths are re-rooted.
	name := "sandbox-" + filepath.Base(t.TempDir())
	want := filepath.Join(os.TempDir(), "quill-dev", name)
	t.Cleanup(func() { _ = os.RemoveAll(want) })

	store, err := platform.Init(name, platform.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, nil))))
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, want, store.(*fs.Store).Path)
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	repo, err := platform.New("", platform.WithAdapter(platform.AdapterMemory))
	require.NoError(t, err)
	defer repo.Close()

	id, err := repo.Upsert(ctx, core.Note{Title: "hello", Color: core.Green})
	require.NoError(t, err)

	n, err := repo.First(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, "hello", n.Title)
}
