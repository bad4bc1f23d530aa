// Package distance provides the dissimilarity metrics used to compare image signatures.
//
// # Supported Metrics
//
//   - Manhattan: sum of absolute elementwise differences (cityblock, L1)
//   - Euclidean: square root of the sum of squared differences (L2)
//   - Chebyshev: maximum absolute elementwise difference (L-infinity)
//   - Canberra: sum of |a-b| / (|a|+|b|), with 0/0 terms counted as 0
//
// Metric is a closed enumeration. Its zero value is not a metric, so an
// unset selector fails instead of silently defaulting.
//
// # Usage
//
//	m, err := distance.ParseMetric("euclidean")
//	d, err := distance.Distance(m, a, b)
//
//	fn, _ := distance.Canberra.Func()
//	d, err = fn(a, b)
package distance
