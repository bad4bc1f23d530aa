package testutil

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
)

// SearchResult is a reference ranking entry.
type SearchResult struct {
	ID    int
	Score float64
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Vector returns a vector with values in range [minVal, maxVal).
func (r *RNG) Vector(dim int, minVal, maxVal float64) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	vec := make([]float64, dim)
	for i := range vec {
		vec[i] = minVal + r.rand.Float64()*span
	}
	return vec
}

// UniformVectors generates random vectors with values in range [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformVectors(num int, dimensions int) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dimensions)
	vectors := make([][]float64, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.Float64()
		}
		vectors[i] = vec
	}

	return vectors
}

// GridVectors generates vectors whose components are integers in [0, levels).
// Low level counts produce many exactly tied distances, which is what
// tie-break tests need.
func (r *RNG) GridVectors(num, dimensions, levels int) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dimensions)
	vectors := make([][]float64, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = float64(r.rand.Intn(levels))
		}
		vectors[i] = vec
	}

	return vectors
}

// Labels assigns one of the given labels to each of n records.
func (r *RNG) Labels(n int, labels ...string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, n)
	for i := range out {
		out[i] = labels[r.rand.Intn(len(labels))]
	}
	return out
}

// Paths returns deterministic image paths "img/00000.jpg", "img/00001.jpg", ...
func Paths(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("img/%05d.jpg", i)
	}
	return out
}

// ExactTopK ranks every vector against query with a straightforward
// sequential scan and a stable sort, the ordering all search paths must match.
func ExactTopK(query []float64, dataset [][]float64, k int, fn func(a, b []float64) (float64, error)) ([]SearchResult, error) {
	results := make([]SearchResult, 0, len(dataset))
	for id, vec := range dataset {
		d, err := fn(query, vec)
		if err != nil {
			return nil, err
		}
		results = append(results, SearchResult{ID: id, Score: d})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}
