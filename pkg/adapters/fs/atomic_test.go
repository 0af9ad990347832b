package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceFile(t *testing.T) {
	t.Run("Creates New File", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "1.md")

		require.NoError(t, replaceFile(filename, []byte("hello atomic")))

		got, err := os.ReadFile(filename)
		require.NoError(t, err)
		assert.Equal(t, "hello atomic", string(got))
	})

	t.Run("Overwrites Existing File", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "1.md")
		require.NoError(t, os.WriteFile(filename, []byte("initial"), 0644))

		require.NoError(t, replaceFile(filename, []byte("overwritten")))

		got, err := os.ReadFile(filename)
		require.NoError(t, err)
		assert.Equal(t, "overwritten", string(got))
	})

	t.Run("Leaves No Temp Files", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, replaceFile(filepath.Join(dir, "2.md"), []byte("x")))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "2.md", entries[0].Name())
	})

	t.Run("Sets Note Permissions", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "3.md")
		require.NoError(t, replaceFile(filename, []byte("x")))

		info, err := os.Stat(filename)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(filePerm), info.Mode().Perm())
	})

	t.Run("Fails if Directory Missing", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "missing_folder", "1.md")
		assert.Error(t, replaceFile(filename, []byte("fail")))
	})
}
