package signature

import (
	"fmt"
)

// ErrLoad is returned when a persisted signature store is malformed.
//
// Row is the 0-based row the problem was found at, or -1 when the problem is
// not tied to a row (bad header, unsupported dtype, decompression failure).
type ErrLoad struct {
	Source string
	Row    int
	Reason string
	cause  error
}

func (e *ErrLoad) Error() string {
	msg := "signature store"
	if e.Source != "" {
		msg += " " + e.Source
	}
	if e.Row >= 0 {
		msg += fmt.Sprintf(": row %d", e.Row)
	}
	msg += ": " + e.Reason
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *ErrLoad) Unwrap() error { return e.cause }

func loadErr(row int, cause error, format string, args ...any) *ErrLoad {
	return &ErrLoad{Row: row, Reason: fmt.Sprintf(format, args...), cause: cause}
}

// withSource stamps the blob name on load errors produced by the decoders.
func withSource(err error, source string) error {
	if le, ok := err.(*ErrLoad); ok && le.Source == "" {
		le.Source = source
	}
	return err
}

// ErrOutOfRange is returned when a record ordinal lies outside the store.
type ErrOutOfRange struct {
	ID  int
	Len int
}

func (e *ErrOutOfRange) Error() string {
	return fmt.Sprintf("record %d out of range [0, %d)", e.ID, e.Len)
}
