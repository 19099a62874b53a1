// Package workspace creates the directory layout a generated pipeline
// writes into and writes its output files.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cavspipes/pipegen/pkg/logger"
)

// Ensure creates every directory, parents included. Existing directories are
// left alone. The first failure stops the walk.
func Ensure(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("directory %s cannot be created: %w", dir, err)
		}
		logger.Debug("ensured directory %s", dir)
	}
	return nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place, so readers never see a partial file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
