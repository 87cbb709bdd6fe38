package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSourceRequired   = errors.New("source is required")
	ErrOwnerRequired    = errors.New("owner is required")
	ErrAlreadyFinalized = errors.New("builder already finalized")
	ErrNotFound         = errors.New("file not found")
	ErrOwnerNotFound    = errors.New("owner not found")
	ErrOwnerExists      = errors.New("owner already exists")

	ErrSourceNotFound   = errors.New("source not found")
	ErrSourceUnreadable = errors.New("source unreadable")
	ErrSourceTooLarge   = errors.New("source exceeds the buffered stream limit")

	ErrStoreVetoed = errors.New("store vetoed")
	ErrStoreFailed = errors.New("store failed")

	// ErrCleanupFailed accompanies a valid file: the original could not be removed after storing.
	ErrCleanupFailed = errors.New("original cleanup failed")

	ErrOwnerNotPersisted   = errors.New("owner not persisted")
	ErrUniquenessViolation = errors.New("file uuid or path already taken")
	ErrCascadeDeleteFailed = errors.New("cascade delete failed")
)

// CascadeDeleteError reports a hard owner delete that stopped at a failing file.
// Blobs listed in Removed are gone; their records, and the owner, are still present.
type CascadeDeleteError struct {
	FileID  string
	Removed []string
	Err     error
}

func (e *CascadeDeleteError) Error() string {
	msg := fmt.Sprintf("%s: file %s: %v", ErrCascadeDeleteFailed, e.FileID, e.Err)
	if len(e.Removed) > 0 {
		msg += " (blobs already removed: " + strings.Join(e.Removed, ", ") + ")"
	}
	return msg
}

func (e *CascadeDeleteError) Unwrap() []error {
	return []error{ErrCascadeDeleteFailed, e.Err}
}
