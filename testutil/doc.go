// Package testutil provides testing utilities for sigsearch.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random signatures and computing the
// exact sequential ranking that every search path must reproduce.
//
// # Random Signature Generation
//
//	rng := testutil.NewRNG(seed)
//	vec := rng.Vector(64, 0, 1)          // uniform [0, 1)
//	vecs := rng.UniformVectors(1000, 64) // single backing array
//	grid := rng.GridVectors(1000, 4, 3)  // small integer values, many ties
//
// # Exact Ranking (Ground Truth)
//
//	results, err := testutil.ExactTopK(query, vecs, k, distance.EuclideanDistance)
package testutil
