package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// ConfigFile is the optional per-directory configuration file.
const ConfigFile = "quill.yaml"

// ErrRootNotFound is returned when no notes root exists above a directory.
var ErrRootNotFound = errors.New("root not found")

// FindRoot recursively looks upwards for a notes root indicator.
// Indicators are: a .quill directory or a quill.yaml file.
// If found, returns the absolute path to the root.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, ".quill") || hasFile(dir, ConfigFile) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return "", ErrRootNotFound
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
