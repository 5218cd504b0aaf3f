// Package flock provides the cross-process run lock.
package flock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLockHeld is returned when another run holds the lock
var ErrLockHeld = errors.New("another run holds the lock")

// RunLock keeps two runs from sharing one source tree
type RunLock struct {
	flock *flock.Flock
	path  string
}

// NewRunLock creates a lock backed by the file at path
func NewRunLock(path string) *RunLock {
	return &RunLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Acquire takes the lock without blocking
func (l *RunLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0750); err != nil {
		return fmt.Errorf("failed to create lock directory for %s: %w", l.path, err)
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to try lock on %s: %w", l.path, err)
	}
	if !acquired {
		return fmt.Errorf("%s: %w", l.path, ErrLockHeld)
	}
	return nil
}

// Release drops the lock
func (l *RunLock) Release() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	return nil
}
