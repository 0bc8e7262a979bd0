package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another run holds the manifest lock.
var ErrLocked = errors.New("manifest is locked by another run")

// Lock is an advisory lock held next to a manifest file.
type Lock struct {
	fl *flock.Flock
}

// AcquireLock takes the lock file for the manifest at path without waiting.
func AcquireLock(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create manifest directory: %w", err)
	}

	fl := flock.New(path + ".lock")

	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", fl.Path(), err)
	}

	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, fl.Path())
	}

	return &Lock{fl: fl}, nil
}

// Release unlocks the manifest.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}

	return l.fl.Unlock()
}
