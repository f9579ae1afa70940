// Package syncerr defines the closed set of failure kinds the batch engine
// produces. Callers branch with errors.Is rather than matching message text.
package syncerr

import "errors"

var (
	// ErrConfigLoad is fatal: nothing runs without a valid configuration.
	ErrConfigLoad = errors.New("config load failed")

	// ErrStatusLoad is recovered by falling back to an empty document.
	ErrStatusLoad = errors.New("status load failed")

	// ErrJobTimeout and ErrJobExecution are recorded into the job's
	// RunResult; the batch continues.
	ErrJobTimeout   = errors.New("job timed out")
	ErrJobExecution = errors.New("job execution failed")

	// ErrStatusPersist and ErrNotifyDelivery are logged and swallowed;
	// neither changes the batch outcome.
	ErrStatusPersist  = errors.New("status persist failed")
	ErrNotifyDelivery = errors.New("notification delivery failed")

	// ErrBatchLocked means another batch holds the exclusive lock.
	ErrBatchLocked = errors.New("another batch is already running")
)
