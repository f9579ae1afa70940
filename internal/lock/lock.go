// Package lock guards the status document against overlapping batches,
// e.g. a cron trigger firing before the previous run finished.
package lock

import (
	"fmt"

	"backsync/internal/syncerr"

	"github.com/gofrs/flock"
)

type BatchLock struct {
	fl *flock.Flock
}

// Acquire takes the exclusive batch lock without blocking. It must be
// released on every exit path; at most one batch may hold it.
func Acquire(path string) (*BatchLock, error) {
	fl := flock.New(path)

	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire batch lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w (lock file %s)", syncerr.ErrBatchLocked, path)
	}

	return &BatchLock{fl: fl}, nil
}

func (l *BatchLock) Release() {
	_ = l.fl.Unlock()
}
