package files

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"raisetl/internal/errors"
)

// AtomicFile is a buffered output file that only replaces its target on Commit.
type AtomicFile struct {
	*bufio.Writer

	path      string
	tmp       *os.File
	done      bool
	committed bool
}

// CreateAtomic creates a temporary file next to path, creating the parent
// directory if needed.
func CreateAtomic(path string) (*AtomicFile, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to create output file for %s", path), err)
	}

	return &AtomicFile{
		Writer: bufio.NewWriterSize(tmp, 256*1024),
		path:   path,
		tmp:    tmp,
	}, nil
}

// Path returns the final destination of the file.
func (a *AtomicFile) Path() string {
	return a.path
}

// Commit flushes, syncs and renames the temporary file onto the target path.
func (a *AtomicFile) Commit() error {
	if a.done {
		if a.committed {
			return nil
		}
		return errors.NewStorageError(fmt.Sprintf("output %s already discarded", a.path), nil)
	}
	if err := a.Writer.Flush(); err != nil {
		a.Close()
		return errors.NewStorageError(fmt.Sprintf("failed to write %s", a.path), err)
	}
	if err := a.tmp.Sync(); err != nil {
		a.Close()
		return errors.NewStorageError(fmt.Sprintf("failed to sync %s", a.path), err)
	}
	a.done = true
	if err := a.tmp.Close(); err != nil {
		os.Remove(a.tmp.Name())
		return errors.NewStorageError(fmt.Sprintf("failed to close %s", a.path), err)
	}
	if err := os.Chmod(a.tmp.Name(), 0644); err != nil {
		os.Remove(a.tmp.Name())
		return errors.NewStorageError(fmt.Sprintf("failed to set permissions on %s", a.path), err)
	}
	if err := os.Rename(a.tmp.Name(), a.path); err != nil {
		os.Remove(a.tmp.Name())
		return errors.NewStorageError(fmt.Sprintf("failed to move output into %s", a.path), err)
	}
	a.committed = true
	return nil
}

// Close discards the temporary file unless Commit succeeded. It is safe to
// call after Commit.
func (a *AtomicFile) Close() error {
	if a.done {
		return nil
	}
	a.done = true
	a.tmp.Close()
	return os.Remove(a.tmp.Name())
}
