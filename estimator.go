package sketch

import (
	"fmt"
	"math"
	"math/bits"
)

// two64 is the size of the hash space, 2^64.
const two64 = 18446744073709551616.0

// Estimator is a non-thread-safe HyperLogLog cardinality estimator.
//
// It keeps m = 2^p one-byte registers. Each register holds the largest rank
// (leading zeros + 1) observed among the hashes routed to it.
type Estimator struct {
	registers []uint8
	p         uint8
	hasher    Hasher
}

// NewEstimator creates an estimator whose standard error does not exceed
// targetError. See PrecisionForError for the accepted range.
func NewEstimator(targetError float64, opts ...Option) (*Estimator, error) {
	p, err := PrecisionForError(targetError)
	if err != nil {
		return nil, err
	}
	return NewEstimatorWithPrecision(p, opts...)
}

// NewEstimatorWithPrecision creates an estimator with 2^p registers.
// p must be in [MinPrecision, MaxPrecision].
func NewEstimatorWithPrecision(p uint8, opts ...Option) (*Estimator, error) {
	if p < MinPrecision || p > MaxPrecision {
		return nil, fmt.Errorf("%w: precision %d must be in [%d, %d]",
			ErrInvalidConfiguration, p, MinPrecision, MaxPrecision)
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}

	return &Estimator{
		registers: make([]uint8, 1<<p),
		p:         p,
		hasher:    o.hasher,
	}, nil
}

// Add records data in the estimator.
func (e *Estimator) Add(data []byte) {
	e.AddHash(e.hasher.Sum64(data, 0))
}

// AddString records s in the estimator.
func (e *Estimator) AddString(s string) {
	e.AddHash(e.hasher.SumString64(s, 0))
}

// AddHash records a precomputed 64-bit hash. Callers mixing AddHash with Add
// must use the same hash function the estimator was built with.
func (e *Estimator) AddHash(h uint64) {
	idx, rank := splitHash(h, e.p)
	if rank > e.registers[idx] {
		e.registers[idx] = rank
	}
}

// splitHash returns the register index (top p bits of h) and the rank of the
// remaining 64-p bits. The rank never exceeds 64-p.
func splitHash(h uint64, p uint8) (idx uint64, rank uint8) {
	idx = h >> (hashBits - p)
	w := h << p
	rank = uint8(bits.LeadingZeros64(w)) + 1
	return idx, min(rank, hashBits-p)
}

// Estimate returns the approximate number of distinct items added. It does
// not modify the estimator and may be called any number of times.
func (e *Estimator) Estimate() float64 {
	var sum float64
	var zeros int
	for _, r := range e.registers {
		sum += math.Ldexp(1, -int(r))
		if r == 0 {
			zeros++
		}
	}
	return cardinality(e.p, sum, zeros)
}

// Count returns Estimate rounded to the nearest integer.
func (e *Estimator) Count() uint64 {
	return uint64(math.Round(e.Estimate()))
}

// cardinality applies the HyperLogLog estimator with the classical small and
// large range corrections to the harmonic sum of 2^-register and the number
// of zero registers.
func cardinality(p uint8, sum float64, zeros int) float64 {
	m := float64(uint64(1) << p)
	if zeros == int(m) {
		return 0
	}

	raw := alpha(p) * m * m / sum
	switch {
	case raw <= 2.5*m && zeros > 0:
		return m * math.Log(m/float64(zeros))
	case raw <= two64/30:
		return raw
	default:
		return -two64 * math.Log1p(-raw/two64)
	}
}

// Merge folds other into e by taking the per-register maximum, which is
// equivalent to e having observed both streams. other is not modified.
func (e *Estimator) Merge(other *Estimator) error {
	if err := compatible(e.p, e.hasher, other.p, other.hasher); err != nil {
		return err
	}
	for i, r := range other.registers {
		if r > e.registers[i] {
			e.registers[i] = r
		}
	}
	return nil
}

// Union returns a new estimator holding the merge of a and b. Neither input is
// modified.
func Union(a, b *Estimator) (*Estimator, error) {
	if err := compatible(a.p, a.hasher, b.p, b.hasher); err != nil {
		return nil, err
	}
	u := a.Clone()
	_ = u.Merge(b)
	return u, nil
}

func compatible(p1 uint8, h1 Hasher, p2 uint8, h2 Hasher) error {
	if p1 != p2 {
		return fmt.Errorf("%w: %d registers vs %d", ErrIncompatibleEstimator,
			uint64(1)<<p1, uint64(1)<<p2)
	}
	if h1 != h2 {
		return fmt.Errorf("%w: hasher %s vs %s", ErrIncompatibleEstimator, h1, h2)
	}
	return nil
}

// Clone returns an independent copy of e.
func (e *Estimator) Clone() *Estimator {
	c := *e
	c.registers = append([]uint8(nil), e.registers...)
	return &c
}

// Precision returns p, where the estimator has 2^p registers.
func (e *Estimator) Precision() uint8 {
	return e.p
}

// NumRegisters returns the number of registers m.
func (e *Estimator) NumRegisters() uint32 {
	return uint32(len(e.registers))
}

// Hasher returns the hash function used by Add and AddString.
func (e *Estimator) Hasher() Hasher {
	return e.hasher
}

// StandardError returns the expected relative standard error of e.
func (e *Estimator) StandardError() float64 {
	return StandardError(e.p)
}
