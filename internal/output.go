package internal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteFileAtomic renders into a temporary file next to path and renames it
// into place once write succeeds. On failure nothing is left at path.
func WriteFileAtomic(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &FileError{Path: dir, Op: "mkdir", Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &FileError{Path: path, Op: "create", Err: err}
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
				LogWarn("Failed to remove temporary file %s: %v", tmpPath, err)
			}
		}
	}()

	if err := write(tmp); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return &FileError{Path: tmpPath, Op: "write", Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return &FileError{Path: path, Op: "rename", Err: fmt.Errorf("from %s: %w", tmpPath, err)}
	}
	committed = true
	return nil
}
