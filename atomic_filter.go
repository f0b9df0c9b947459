package sketch

import (
	"fmt"
	"iter"
	"math/bits"
	"sync/atomic"
)

// AtomicFilter is a thread-safe bloom filter using atomic operations.
// It computes the same positions as a Filter with identical parameters, but
// stores the bits in atomic.Uint64 words so Add and Test may run concurrently.
type AtomicFilter struct {
	words  []atomic.Uint64
	size   uint64
	k      uint32
	hasher Hasher
	count  atomic.Uint64
}

// NewAtomicFilter creates a thread-safe bloom filter with size bits and
// numHashes hash functions. Both must be at least 1.
func NewAtomicFilter(size uint64, numHashes uint32, opts ...Option) (*AtomicFilter, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: filter size must be at least 1", ErrInvalidConfiguration)
	}
	if numHashes < 1 {
		return nil, fmt.Errorf("%w: number of hashes must be at least 1", ErrInvalidConfiguration)
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}

	return &AtomicFilter{
		words:  make([]atomic.Uint64, wordsFor(size)),
		size:   size,
		k:      numHashes,
		hasher: o.hasher,
	}, nil
}

// NewAtomicFilterWithEstimates creates a thread-safe bloom filter sized for the
// expected number of items and desired false positive rate.
func NewAtomicFilterWithEstimates(expectedItems uint64, fpRate float64, opts ...Option) (*AtomicFilter, error) {
	size, k := OptimalParams(expectedItems, fpRate)
	return NewAtomicFilter(size, k, opts...)
}

// Positions returns the k bit positions of key, in seed order.
func (f *AtomicFilter) Positions(key string) iter.Seq[uint64] {
	return positions(f.hasher, key, f.size, f.k)
}

// Add adds data to the bloom filter atomically.
func (f *AtomicFilter) Add(data []byte) {
	for i := uint32(0); i < f.k; i++ {
		f.set(f.hasher.Sum64(data, uint64(i)) % f.size)
	}
	f.count.Add(1)
}

// AddString adds a string to the bloom filter atomically.
func (f *AtomicFilter) AddString(s string) {
	for i := uint32(0); i < f.k; i++ {
		f.set(f.hasher.SumString64(s, uint64(i)) % f.size)
	}
	f.count.Add(1)
}

func (f *AtomicFilter) set(pos uint64) {
	f.words[pos/64].Or(1 << (pos % 64))
}

func (f *AtomicFilter) isSet(pos uint64) bool {
	return f.words[pos/64].Load()&(1<<(pos%64)) != 0
}

// Test checks if data might be in the bloom filter.
// This operation is safe to call concurrently with Add.
func (f *AtomicFilter) Test(data []byte) bool {
	for i := uint32(0); i < f.k; i++ {
		if !f.isSet(f.hasher.Sum64(data, uint64(i)) % f.size) {
			return false
		}
	}
	return true
}

// TestString checks if a string might be in the bloom filter.
func (f *AtomicFilter) TestString(s string) bool {
	for i := uint32(0); i < f.k; i++ {
		if !f.isSet(f.hasher.SumString64(s, uint64(i)) % f.size) {
			return false
		}
	}
	return true
}

// TestAndAdd reports whether data might already be present, then adds it.
// The test and the add are separate atomic steps: two goroutines adding the
// same new key may both observe false.
func (f *AtomicFilter) TestAndAdd(data []byte) bool {
	present := f.Test(data)
	f.Add(data)
	return present
}

// TestAndAddString is the string form of TestAndAdd, with the same race window.
func (f *AtomicFilter) TestAndAddString(s string) bool {
	present := f.TestString(s)
	f.AddString(s)
	return present
}

// Size returns the number of bits in the filter.
func (f *AtomicFilter) Size() uint64 {
	return f.size
}

// K returns the number of hash functions used.
func (f *AtomicFilter) K() uint32 {
	return f.k
}

// Hasher returns the hash function used to compute positions.
func (f *AtomicFilter) Hasher() Hasher {
	return f.hasher
}

// Count returns the number of Add calls.
func (f *AtomicFilter) Count() uint64 {
	return f.count.Load()
}

// EstimatedFillRatio returns the proportion of bits that are set.
func (f *AtomicFilter) EstimatedFillRatio() float64 {
	var setBits uint64
	for i := range f.words {
		setBits += uint64(bits.OnesCount64(f.words[i].Load()))
	}
	return float64(setBits) / float64(f.size)
}

// EstimatedFalsePositiveRate estimates the current false positive rate.
func (f *AtomicFilter) EstimatedFalsePositiveRate() float64 {
	return EstimateFalsePositiveRate(f.size, f.k, f.count.Load())
}
