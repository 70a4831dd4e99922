package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// LocalDirName marks a directory holding a project-local notebook.
const LocalDirName = ".bloco"

// ErrRootNotFound is returned by FindRoot when no notebook marker exists above the start dir.
var ErrRootNotFound = errors.New("root not found")

// FindRoot looks upwards from startDir for a LocalDirName directory and
// returns its absolute path.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		candidate := filepath.Join(dir, LocalDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", ErrRootNotFound
}

// DefaultStorePath returns the storage location used when none is configured:
// a project-local notebook found from the working directory, otherwise
// $XDG_DATA_HOME/bloco (or the platform equivalent under the home directory).
func DefaultStorePath() string {
	if wd, err := os.Getwd(); err == nil {
		if root, err := FindRoot(wd); err == nil {
			return root
		}
	}
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "bloco")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "bloco")
	}
	return LocalDirName
}
