package testutil

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func l1(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.New("length")
	}
	var s float64
	for i := range a {
		s += math.Abs(a[i] - b[i])
	}
	return s, nil
}

func TestUniformVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.UniformVectors(8, 32)

	assert.Equal(t, 8, len(v))
	assert.Equal(t, 32, len(v[0]))
	assert.Less(t, v[0][0], 1.0)
	assert.GreaterOrEqual(t, v[1][0], 0.0)
}

func TestGridVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.GridVectors(50, 4, 3)
	require.Len(t, v, 50)
	for _, vec := range v {
		for _, x := range vec {
			assert.Contains(t, []float64{0, 1, 2}, x)
		}
	}
}

func TestReset(t *testing.T) {
	rng := NewRNG(1)
	a := rng.Vector(8, -1, 1)
	rng.Reset()
	b := rng.Vector(8, -1, 1)
	assert.Equal(t, a, b)
	assert.Equal(t, int64(1), rng.Seed())
}

func TestExactTopK(t *testing.T) {
	dataset := [][]float64{{2}, {1}, {1}, {0}, {3}}

	got, err := ExactTopK([]float64{0}, dataset, 3, l1)
	require.NoError(t, err)
	assert.Equal(t, []SearchResult{{ID: 3, Score: 0}, {ID: 1, Score: 1}, {ID: 2, Score: 1}}, got)

	all, err := ExactTopK([]float64{0}, dataset, 10, l1)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	_, err = ExactTopK([]float64{0, 0}, dataset, 1, l1)
	require.Error(t, err)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, []string{"img/00000.jpg", "img/00001.jpg"}, Paths(2))
}
