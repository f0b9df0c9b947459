package sketch

import (
	"fmt"
	"math"
	"sync/atomic"
)

// registersPerWord is the number of 8-bit registers packed into one atomic word.
const registersPerWord = 4

// AtomicEstimator is a thread-safe HyperLogLog cardinality estimator.
// Registers are packed four per atomic.Uint32 and raised with a
// compare-and-swap loop, so Add never takes a lock. It produces the same
// registers as an Estimator fed the same keys in any order.
type AtomicEstimator struct {
	words  []atomic.Uint32
	p      uint8
	hasher Hasher
}

// NewAtomicEstimator creates a thread-safe estimator whose standard error does
// not exceed targetError.
func NewAtomicEstimator(targetError float64, opts ...Option) (*AtomicEstimator, error) {
	p, err := PrecisionForError(targetError)
	if err != nil {
		return nil, err
	}
	return NewAtomicEstimatorWithPrecision(p, opts...)
}

// NewAtomicEstimatorWithPrecision creates a thread-safe estimator with 2^p
// registers.
func NewAtomicEstimatorWithPrecision(p uint8, opts ...Option) (*AtomicEstimator, error) {
	if p < MinPrecision || p > MaxPrecision {
		return nil, fmt.Errorf("%w: precision %d must be in [%d, %d]",
			ErrInvalidConfiguration, p, MinPrecision, MaxPrecision)
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}

	return &AtomicEstimator{
		words:  make([]atomic.Uint32, (1<<p)/registersPerWord),
		p:      p,
		hasher: o.hasher,
	}, nil
}

// Add records data in the estimator.
func (e *AtomicEstimator) Add(data []byte) {
	e.AddHash(e.hasher.Sum64(data, 0))
}

// AddString records s in the estimator.
func (e *AtomicEstimator) AddString(s string) {
	e.AddHash(e.hasher.SumString64(s, 0))
}

// AddHash records a precomputed 64-bit hash.
func (e *AtomicEstimator) AddHash(h uint64) {
	idx, rank := splitHash(h, e.p)
	e.raise(idx, rank)
}

// raise sets register idx to max(current, v).
func (e *AtomicEstimator) raise(idx uint64, v uint8) {
	word := &e.words[idx/registersPerWord]
	shift := (idx % registersPerWord) * 8
	for {
		old := word.Load()
		if uint8(old>>shift) >= v {
			return
		}
		updated := old&^(0xff<<shift) | uint32(v)<<shift
		if word.CompareAndSwap(old, updated) {
			return
		}
	}
}

func (e *AtomicEstimator) register(idx uint64) uint8 {
	return uint8(e.words[idx/registersPerWord].Load() >> ((idx % registersPerWord) * 8))
}

// Estimate returns the approximate number of distinct items added. Concurrent
// Adds may or may not be reflected.
func (e *AtomicEstimator) Estimate() float64 {
	var sum float64
	var zeros int
	for i := range e.words {
		w := e.words[i].Load()
		for j := 0; j < registersPerWord; j++ {
			r := uint8(w >> (j * 8))
			sum += math.Ldexp(1, -int(r))
			if r == 0 {
				zeros++
			}
		}
	}
	return cardinality(e.p, sum, zeros)
}

// Count returns Estimate rounded to the nearest integer.
func (e *AtomicEstimator) Count() uint64 {
	return uint64(math.Round(e.Estimate()))
}

// Merge raises every register of e to at least the matching register of
// other.
func (e *AtomicEstimator) Merge(other *AtomicEstimator) error {
	if err := compatible(e.p, e.hasher, other.p, other.hasher); err != nil {
		return err
	}
	for idx := uint64(0); idx < uint64(1)<<e.p; idx++ {
		if r := other.register(idx); r > 0 {
			e.raise(idx, r)
		}
	}
	return nil
}

// Snapshot copies the current registers into a new Estimator.
func (e *AtomicEstimator) Snapshot() *Estimator {
	s := &Estimator{
		registers: make([]uint8, 1<<e.p),
		p:         e.p,
		hasher:    e.hasher,
	}
	for idx := range s.registers {
		s.registers[idx] = e.register(uint64(idx))
	}
	return s
}

// Precision returns p, where the estimator has 2^p registers.
func (e *AtomicEstimator) Precision() uint8 {
	return e.p
}

// NumRegisters returns the number of registers m.
func (e *AtomicEstimator) NumRegisters() uint32 {
	return uint32(1) << e.p
}

// Hasher returns the hash function used by Add and AddString.
func (e *AtomicEstimator) Hasher() Hasher {
	return e.hasher
}
