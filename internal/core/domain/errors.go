package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by operations that require an existing test,
	// draft or creative.
	ErrNotFound = errors.New("not found")
	// ErrStorageCorrupt marks a persisted collection that could not be parsed.
	ErrStorageCorrupt = errors.New("storage corrupt")
	// ErrDecodeFailure marks a creative whose pixel dimensions could not be
	// probed. It never aborts ingestion.
	ErrDecodeFailure = errors.New("image decode failed")
)

// FetchError reports a creative whose binary payload could not be retrieved
// while packaging an archive. Position is 1-based.
type FetchError struct {
	CreativeID string
	FileName   string
	Position   int
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch creative #%d %q (%s): %v", e.Position, e.FileName, e.CreativeID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ValidationError rejects user input before it reaches the test store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
