// Package fsutil provides directory creation and output locking helpers.
package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the output lock.
var ErrLocked = errors.New("output is locked by another run")

// EnsureDir creates p and its parents. An empty path is a no-op.
func EnsureDir(p string) error {
	p = strings.TrimSpace(p)
	if p == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Clean(p), 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", p, err)
	}
	return nil
}

// EnsureParent creates the directory that will hold the file at path.
func EnsureParent(path string) error {
	dir := filepath.Dir(filepath.Clean(path))
	if dir == "." || dir == "" {
		return nil
	}
	return EnsureDir(dir)
}

// Exists reports whether path names an existing file or directory.
func Exists(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// OutputLock guards a single output file against concurrent writers.
type OutputLock struct {
	path string
	lock *flock.Flock
}

// LockOutput takes a non-blocking lock on "<path>.lock".
func LockOutput(path string) (*OutputLock, error) {
	if err := EnsureParent(path); err != nil {
		return nil, err
	}
	lockPath := filepath.Clean(path) + ".lock"
	l := flock.New(lockPath)
	ok, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", lockPath, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, lockPath)
	}
	return &OutputLock{path: lockPath, lock: l}, nil
}

// Path returns the lock file location.
func (o *OutputLock) Path() string {
	return o.path
}

// Release unlocks and removes the lock file.
func (o *OutputLock) Release() error {
	if o == nil || o.lock == nil {
		return nil
	}
	if err := o.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", o.path, err)
	}
	_ = os.Remove(o.path)
	return nil
}

// WriteFileAtomic writes data to a temp file beside path and renames it into place.
func WriteFileAtomic(path string, data []byte) error {
	if err := EnsureParent(path); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
