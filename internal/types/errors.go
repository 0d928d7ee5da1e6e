package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrInvalidRecord  = errors.New("record has no text and no author")
	ErrNotRunning     = errors.New("crawler is not running")
	ErrAlreadyRunning = errors.New("crawler is already running")
	ErrNotFound       = errors.New("record not found")
	ErrUnknownFormat  = errors.New("unknown export format")
	ErrNoPlatform     = errors.New("no adapter matches the page URL")
)

// StorageError wraps errors that occur during storage/export.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// SessionError wraps errors from the live browser session (snapshot, scroll,
// eval). These never unwind past a crawl cycle boundary.
type SessionError struct {
	Op  string
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session error during %s: %v", e.Op, e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }
