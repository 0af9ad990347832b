package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// TempFilePrefix starts the name of every in-flight write. It never matches
// NotePattern, so listings and the watcher skip half-written notes.
const TempFilePrefix = ".quill-tmp-"

const filePerm = 0644

// replaceFile swaps the contents of name for data in one rename. Readers see
// either the previous note or the new one. The parent directory must exist.
func replaceFile(name string, data []byte) (err error) {
	dir := filepath.Dir(name)

	tmp, err := os.CreateTemp(dir, TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to stage %s: %w", filepath.Base(name), err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := fillAndClose(tmp, data); err != nil {
		return fmt.Errorf("failed to stage %s: %w", filepath.Base(name), err)
	}
	if err := os.Chmod(tmp.Name(), filePerm); err != nil {
		return fmt.Errorf("failed to stage %s: %w", filepath.Base(name), err)
	}
	if err := os.Rename(tmp.Name(), name); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	syncDir(dir)
	return nil
}

// fillAndClose writes data, flushes it to disk and closes f.
func fillAndClose(f *os.File, data []byte) error {
	_, werr := f.Write(data)
	if werr == nil {
		werr = f.Sync()
	}
	return errors.Join(werr, f.Close())
}

// syncDir persists the rename itself. Some platforms cannot sync a
// directory; the note is already in place, so failures are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
