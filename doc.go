// Package sketch provides two probabilistic data structures for Go: a bloom
// filter for approximate set membership and a HyperLogLog estimator for
// approximate distinct counting.
//
// # Bloom filter
//
// A bloom filter is a space-efficient probabilistic data structure that tests
// whether an element is a member of a set. False positive matches are possible,
// but false negatives are not – if the filter says an element is not present,
// it definitely is not. If it says an element might be present, it could be a
// false positive.
//
// A [Filter] of m bits with k hash functions maps every key to k positions.
// Position i is the key hashed with seed i, modulo m:
//
//	for i := range k {
//		pos := hasher.SumString64(key, i) % m
//	}
//
// Seeds are fixed, so two filters built with the same size, k and [Hasher]
// always agree on the positions of a key, in this process or any other. Use
// [Filter.Positions] to inspect them.
//
// Bits are never cleared. There is no delete and no resize: to grow a filter,
// build a larger one and add the keys again.
//
// # HyperLogLog
//
// An [Estimator] keeps m = 2^p registers. Each key is hashed once to 64 bits;
// the top p bits pick a register and the rank of the first set bit in the
// remaining bits raises that register. [Estimator.Estimate] computes the
// harmonic mean estimate with the classical corrections:
//
//	E = alpha_m * m^2 / sum(2^-M[j])
//	E <= 2.5m and V zero registers > 0  ->  m * ln(m / V)
//	E >  2^64 / 30                       ->  -2^64 * ln(1 - E / 2^64)
//
// An empty estimator reports exactly 0. The expected relative standard error
// is 1.04/sqrt(m); [NewEstimator] picks the smallest p that meets a target.
//
// Two estimators with the same precision and hasher can be merged with
// [Estimator.Merge] or [Union]; the result is the estimator of the union of
// both streams.
//
// # Choosing Parameters
//
//	// 1000 bits, 3 hash functions
//	f, err := sketch.NewFilter(1000, 3)
//
//	// sized for 1 million items with 1% false positive rate
//	f, err := sketch.NewFilterWithEstimates(1_000_000, 0.01)
//
//	// 1% standard error: p = 14, 16 KiB of registers
//	e, err := sketch.NewEstimator(0.01)
//
// Out-of-range parameters return [ErrInvalidConfiguration] and no instance.
//
// # Hashing
//
// Every structure takes a [Hasher] via [WithHasher]. [XXH3] is the default;
// [Murmur3] and [XXHash] are also available. None of them are cryptographic.
//
// # Thread Safety
//
// [Filter] and [Estimator] are NOT thread-safe. Many readers may call Test or
// Estimate while no writer is active; writers need exclusive access.
//
// [AtomicFilter] sets bits with [sync/atomic.Uint64.Or] and [AtomicEstimator]
// raises registers with a compare-and-swap loop. Both are safe for concurrent
// Add and Test/Estimate.
//
// The [AtomicFilter.TestAndAdd] method is NOT a single atomic operation –
// there is a race window between the test and add. Callers that need
// check-then-insert as one step must serialize it themselves.
//
// # References
//
//   - Bloom, Space/Time Trade-offs in Hash Coding with Allowable Errors (1970)
//   - Flajolet et al., HyperLogLog: the analysis of a near-optimal cardinality
//     estimation algorithm: http://algo.inria.fr/flajolet/Publications/FlFuGaMe07.pdf
package sketch
