package retrieval

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidK is returned when a query asks for fewer than one result.
	ErrInvalidK = errors.New("retrieval: k must be at least 1")

	// ErrInvalidQuery is returned when the query vector holds NaN or Inf.
	ErrInvalidQuery = errors.New("retrieval: query vector must be finite")
)

// Error reports a comparison that failed while scanning the store.
// RecordID is the lowest record id whose comparison failed.
type Error struct {
	RecordID int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("retrieval: record %d: %v", e.RecordID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
