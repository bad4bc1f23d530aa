package distance

import (
	"errors"
	"math"
	"testing"

	"github.com/hupe1980/sigsearch/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManhattan(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
	}{
		{"Simple", []float64{1, 2, 3}, []float64{4, 5, 6}, 9},
		{"Zero", []float64{0, 0, 0}, []float64{0, 0, 0}, 0},
		{"Mixed", []float64{1, -1}, []float64{-1, 1}, 4},
		{"Empty", []float64{}, []float64{}, 0},
		{"Pythagorean", []float64{0, 0}, []float64{3, 4}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ManhattanDistance(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-12)
		})
	}
}

func TestEuclidean(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
	}{
		{"Pythagorean", []float64{0, 0}, []float64{3, 4}, 5},
		{"Identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"Mixed", []float64{1, -1}, []float64{-1, 1}, math.Sqrt(8)},
		{"Unit", []float64{0, 0}, []float64{1, 0}, 1},
		{"Empty", []float64{}, []float64{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EuclideanDistance(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-12)
		})
	}
}

func TestChebyshev(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
	}{
		{"Simple", []float64{1, 2, 3}, []float64{4, 7, 3}, 5},
		{"Negative", []float64{-10, 0}, []float64{2, 1}, 12},
		{"Identical", []float64{1, 2}, []float64{1, 2}, 0},
		{"Empty", []float64{}, []float64{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ChebyshevDistance(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCanberra(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
	}{
		{"Simple", []float64{1, 2}, []float64{3, 2}, 0.5},
		{"BothZero", []float64{0, 0}, []float64{0, 0}, 0},
		{"OneZero", []float64{0, 1}, []float64{5, 1}, 1},
		{"OppositeSign", []float64{1}, []float64{-1}, 1},
		{"MixedZeros", []float64{0, 2, 0}, []float64{0, 6, 4}, 0.5 + 1},
		{"ExtremeOppositeSign", []float64{math.MaxFloat64}, []float64{-math.MaxFloat64}, 1},
		{"ExtremeAndSmall", []float64{math.MaxFloat64, 1}, []float64{0.5, 1}, 1},
		{"ExtremeEqual", []float64{-math.MaxFloat64}, []float64{-math.MaxFloat64}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanberraDistance(tt.a, tt.b)
			require.NoError(t, err)
			assert.False(t, math.IsNaN(got))
			assert.InDelta(t, tt.expected, got, 1e-12)
		})
	}
}

func TestDimensionMismatch(t *testing.T) {
	for _, m := range Metrics {
		t.Run(m.String(), func(t *testing.T) {
			_, err := Distance(m, []float64{1, 2, 3}, []float64{1, 2})
			require.Error(t, err)

			var dm *ErrDimensionMismatch
			require.True(t, errors.As(err, &dm))
			assert.Equal(t, 3, dm.Expected)
			assert.Equal(t, 2, dm.Actual)
		})
	}
}

func TestParseMetric(t *testing.T) {
	tests := []struct {
		in       string
		expected Metric
	}{
		{"manhattan", Manhattan},
		{"CityBlock", Manhattan},
		{"l1", Manhattan},
		{"euclidean", Euclidean},
		{"Euclidienne", Euclidean},
		{" L2 ", Euclidean},
		{"chebyshev", Chebyshev},
		{"linf", Chebyshev},
		{"canberra", Canberra},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, err := ParseMetric(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m)
		})
	}

	t.Run("Unknown", func(t *testing.T) {
		for _, name := range []string{"", "Autre", "cosine", "hamming"} {
			_, err := ParseMetric(name)
			var um *ErrUnknownMetric
			require.ErrorAs(t, err, &um)
			assert.Equal(t, name, um.Name)
		}
	})
}

func TestMetricFunc(t *testing.T) {
	t.Run("ZeroValueIsUnknown", func(t *testing.T) {
		var m Metric
		assert.False(t, m.Valid())
		_, err := m.Func()
		var um *ErrUnknownMetric
		require.ErrorAs(t, err, &um)

		_, err = Distance(m, []float64{1}, []float64{1})
		require.ErrorAs(t, err, &um)
	})

	t.Run("OutOfRange", func(t *testing.T) {
		_, err := Metric(42).Func()
		var um *ErrUnknownMetric
		require.ErrorAs(t, err, &um)
		assert.Equal(t, Metric(42), um.Metric)
	})

	t.Run("TextRoundTrip", func(t *testing.T) {
		for _, m := range Metrics {
			b, err := m.MarshalText()
			require.NoError(t, err)

			var got Metric
			require.NoError(t, got.UnmarshalText(b))
			assert.Equal(t, m, got)
		}

		_, err := Metric(0).MarshalText()
		require.Error(t, err)
	})
}

func TestMetricProperties(t *testing.T) {
	rng := testutil.NewRNG(7)
	const dim = 16

	for _, m := range Metrics {
		fn, err := m.Func()
		require.NoError(t, err)

		t.Run(m.String(), func(t *testing.T) {
			for i := 0; i < 200; i++ {
				a := rng.Vector(dim, -5, 5)
				b := rng.Vector(dim, -5, 5)
				c := rng.Vector(dim, -5, 5)
				if i%10 == 0 {
					// sparse components exercise the Canberra 0/0 convention
					a[i%dim], b[i%dim] = 0, 0
				}

				self, err := fn(a, a)
				require.NoError(t, err)
				assert.Zero(t, self, "identity")

				ab, err := fn(a, b)
				require.NoError(t, err)
				ba, err := fn(b, a)
				require.NoError(t, err)
				assert.Equal(t, ab, ba, "symmetry must be exact")
				assert.GreaterOrEqual(t, ab, 0.0)
				assert.False(t, math.IsNaN(ab))

				if m == Canberra {
					continue
				}
				ac, err := fn(a, c)
				require.NoError(t, err)
				bc, err := fn(b, c)
				require.NoError(t, err)
				assert.LessOrEqual(t, ac, ab+bc+1e-9, "triangle inequality")
			}
		})
	}
}
