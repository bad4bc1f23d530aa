package distance

import (
	"math"
	"strings"
)

// Metric represents the distance metric used for signature comparison.
type Metric uint8

const (
	// Manhattan is the L1 / cityblock distance.
	Manhattan Metric = iota + 1
	// Euclidean is the L2 distance (not squared).
	Euclidean
	// Chebyshev is the L-infinity distance.
	Chebyshev
	// Canberra is the weighted L1 distance sum(|a-b| / (|a|+|b|)).
	Canberra
)

// Metrics lists every supported metric in declaration order.
var Metrics = []Metric{Manhattan, Euclidean, Chebyshev, Canberra}

func (m Metric) String() string {
	switch m {
	case Manhattan:
		return "manhattan"
	case Euclidean:
		return "euclidean"
	case Chebyshev:
		return "chebyshev"
	case Canberra:
		return "canberra"
	default:
		return "unknown"
	}
}

// Valid reports whether m is one of the supported metrics.
func (m Metric) Valid() bool {
	return m >= Manhattan && m <= Canberra
}

// Func is a function type for distance calculation.
type Func func(a, b []float64) (float64, error)

// Func returns the distance function for the metric.
func (m Metric) Func() (Func, error) {
	switch m {
	case Manhattan:
		return ManhattanDistance, nil
	case Euclidean:
		return EuclideanDistance, nil
	case Chebyshev:
		return ChebyshevDistance, nil
	case Canberra:
		return CanberraDistance, nil
	default:
		return nil, &ErrUnknownMetric{Metric: m}
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Metric) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, &ErrUnknownMetric{Metric: m}
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Metric) UnmarshalText(text []byte) error {
	parsed, err := ParseMetric(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

var aliases = map[string]Metric{
	"manhattan":   Manhattan,
	"cityblock":   Manhattan,
	"l1":          Manhattan,
	"euclidean":   Euclidean,
	"euclidienne": Euclidean,
	"l2":          Euclidean,
	"chebyshev":   Chebyshev,
	"chessboard":  Chebyshev,
	"linf":        Chebyshev,
	"canberra":    Canberra,
}

// ParseMetric resolves a metric by name. Matching is case-insensitive and
// ignores surrounding whitespace.
func ParseMetric(name string) (Metric, error) {
	if m, ok := aliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return m, nil
	}
	return 0, &ErrUnknownMetric{Name: name}
}

// Distance computes the distance between a and b under metric m.
func Distance(m Metric, a, b []float64) (float64, error) {
	fn, err := m.Func()
	if err != nil {
		return 0, err
	}
	return fn(a, b)
}

func checkDims(a, b []float64) error {
	if len(a) != len(b) {
		return &ErrDimensionMismatch{Expected: len(a), Actual: len(b)}
	}
	return nil
}

// ManhattanDistance returns the sum of absolute elementwise differences.
func ManhattanDistance(a, b []float64) (float64, error) {
	if err := checkDims(a, b); err != nil {
		return 0, err
	}
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum, nil
}

// EuclideanDistance returns the square root of the sum of squared differences.
func EuclideanDistance(a, b []float64) (float64, error) {
	if err := checkDims(a, b); err != nil {
		return 0, err
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// ChebyshevDistance returns the maximum absolute elementwise difference.
func ChebyshevDistance(a, b []float64) (float64, error) {
	if err := checkDims(a, b); err != nil {
		return 0, err
	}
	var maxDiff float64
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff, nil
}

// CanberraDistance returns sum(|a-b| / (|a|+|b|)). Terms where both
// components are zero contribute 0.
func CanberraDistance(a, b []float64) (float64, error) {
	if err := checkDims(a, b); err != nil {
		return 0, err
	}
	var sum float64
	for i := range a {
		x, y := a[i], b[i]
		denom := math.Abs(x) + math.Abs(y)
		if denom == 0 {
			continue
		}
		num := math.Abs(x - y)
		if math.IsInf(num, 0) || math.IsInf(denom, 0) {
			// Near MaxFloat64 both sides overflow; scaling keeps the term in [0, 1].
			s := max(math.Abs(x), math.Abs(y))
			x, y = x/s, y/s
			num, denom = math.Abs(x-y), math.Abs(x)+math.Abs(y)
		}
		sum += num / denom
	}
	return sum, nil
}
