package git

import (
	"errors"
	"fmt"
)

// ErrNotSynced is returned by history queries made before Sync.
var ErrNotSynced = errors.New("repository not initialized, call Sync() first")

// SyncError reports a failure to bring the local mirror up to date.
// It is fatal for a run: stale data must not be used silently.
type SyncError struct {
	// Operation is the step that failed ("clone", "open", "fetch", "head").
	Operation string

	// Repository is the remote URL.
	Repository string

	// LocalPath is the mirror location.
	LocalPath string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *SyncError) Error() string {
	return fmt.Sprintf("sync error [operation=%s, repository=%s, path=%s]: %v",
		e.Operation, e.Repository, e.LocalPath, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *SyncError) Unwrap() error {
	return e.Cause
}
