package distance

import "fmt"

// ErrDimensionMismatch is returned when two vectors of unequal length are compared.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrUnknownMetric is returned for a metric selector outside the closed set.
type ErrUnknownMetric struct {
	// Name is the rejected selector. It is empty when the selector was a
	// numeric Metric value rather than a string.
	Name   string
	Metric Metric
}

func (e *ErrUnknownMetric) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("unknown metric %q", e.Name)
	}
	return fmt.Sprintf("unknown metric %d", uint8(e.Metric))
}
