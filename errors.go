package sigsearch

import (
	"errors"
	"fmt"

	"github.com/hupe1980/sigsearch/distance"
	"github.com/hupe1980/sigsearch/retrieval"
	"github.com/hupe1980/sigsearch/signature"
)

var (
	// ErrInvalidArgument is returned for caller errors such as k < 1 or a
	// non-finite query vector.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned by First when no record matches.
	ErrNotFound = errors.New("not found")

	// ErrClosed is returned when a closed DB is used.
	ErrClosed = errors.New("sigsearch: closed")
)

// ErrDimensionMismatch indicates a query/record dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	// RecordID is the lowest record whose comparison failed, or -1.
	RecordID int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	if e.RecordID >= 0 {
		return fmt.Sprintf("dimension mismatch at record %d: expected %d, got %d", e.RecordID, e.Expected, e.Actual)
	}
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrUnknownMetric indicates a metric selector outside the supported set.
type ErrUnknownMetric struct {
	Name  string
	cause error
}

func (e *ErrUnknownMetric) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("unknown metric %q", e.Name)
	}
	return "unknown metric"
}

func (e *ErrUnknownMetric) Unwrap() error { return e.cause }

// ErrStoreLoad indicates a malformed or unreadable signature store.
type ErrStoreLoad struct {
	Source string
	// Row is the failing row, or -1 when the failure is not row-specific.
	Row   int
	cause error
}

func (e *ErrStoreLoad) Error() string {
	return e.cause.Error()
}

func (e *ErrStoreLoad) Unwrap() error { return e.cause }

// ErrOutOfRange indicates a record lookup beyond the store bounds.
type ErrOutOfRange struct {
	ID    int
	Len   int
	cause error
}

func (e *ErrOutOfRange) Error() string {
	return fmt.Sprintf("record %d out of range [0, %d)", e.ID, e.Len)
}

func (e *ErrOutOfRange) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Comparison failures during a scan.
	var dm *distance.ErrDimensionMismatch
	if errors.As(err, &dm) {
		recordID := -1
		var re *retrieval.Error
		if errors.As(err, &re) {
			recordID = re.RecordID
		}
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, RecordID: recordID, cause: err}
	}
	var um *distance.ErrUnknownMetric
	if errors.As(err, &um) {
		return &ErrUnknownMetric{Name: um.Name, cause: err}
	}

	// Argument normalization.
	if errors.Is(err, retrieval.ErrInvalidK) || errors.Is(err, retrieval.ErrInvalidQuery) {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	// Store errors.
	var le *signature.ErrLoad
	if errors.As(err, &le) {
		return &ErrStoreLoad{Source: le.Source, Row: le.Row, cause: err}
	}
	var oor *signature.ErrOutOfRange
	if errors.As(err, &oor) {
		return &ErrOutOfRange{ID: oor.ID, Len: oor.Len, cause: err}
	}

	return err
}
