package sketch

import (
	"fmt"
	"iter"
	"math/bits"
)

// Filter is a non-thread-safe bloom filter.
//
// Each key maps to k bit positions. Position i is the key hashed with seed i,
// reduced modulo the filter size, so the position set of a key depends only on
// the key, the size, k and the hasher.
type Filter struct {
	words  []uint64 // size bits, packed 64 per word
	size   uint64   // Number of bits
	k      uint32   // Number of hash functions
	hasher Hasher
	count  uint64 // Number of Add calls
}

// NewFilter creates a bloom filter with size bits and numHashes hash
// functions. Both must be at least 1.
func NewFilter(size uint64, numHashes uint32, opts ...Option) (*Filter, error) {
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

	return &Filter{
		words:  make([]uint64, wordsFor(size)),
		size:   size,
		k:      numHashes,
		hasher: o.hasher,
	}, nil
}

// NewFilterWithEstimates creates a bloom filter sized by OptimalParams for the
// expected number of items and desired false positive rate.
func NewFilterWithEstimates(expectedItems uint64, fpRate float64, opts ...Option) (*Filter, error) {
	size, k := OptimalParams(expectedItems, fpRate)
	return NewFilter(size, k, opts...)
}

func wordsFor(size uint64) uint64 {
	return (size + 63) / 64
}

// Positions returns the k bit positions of key, in seed order. The sequence
// can be ranged over any number of times and always yields the same values.
func (f *Filter) Positions(key string) iter.Seq[uint64] {
	return positions(f.hasher, key, f.size, f.k)
}

func positions(h Hasher, key string, size uint64, k uint32) iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for i := uint32(0); i < k; i++ {
			if !yield(h.SumString64(key, uint64(i)) % size) {
				return
			}
		}
	}
}

// Add adds data to the bloom filter.
func (f *Filter) Add(data []byte) {
	for i := uint32(0); i < f.k; i++ {
		f.set(f.hasher.Sum64(data, uint64(i)) % f.size)
	}
	f.count++
}

// AddString adds a string to the bloom filter.
func (f *Filter) AddString(s string) {
	for i := uint32(0); i < f.k; i++ {
		f.set(f.hasher.SumString64(s, uint64(i)) % f.size)
	}
	f.count++
}

func (f *Filter) set(pos uint64) {
	f.words[pos/64] |= 1 << (pos % 64)
}

func (f *Filter) isSet(pos uint64) bool {
	return f.words[pos/64]&(1<<(pos%64)) != 0
}

// Test checks if data might be in the bloom filter.
// Returns true if the data might be present (with false positive probability),
// or false if the data is definitely not present.
func (f *Filter) Test(data []byte) bool {
	for i := uint32(0); i < f.k; i++ {
		if !f.isSet(f.hasher.Sum64(data, uint64(i)) % f.size) {
			return false
		}
	}
	return true
}

// TestString checks if a string might be in the bloom filter.
func (f *Filter) TestString(s string) bool {
	for i := uint32(0); i < f.k; i++ {
		if !f.isSet(f.hasher.SumString64(s, uint64(i)) % f.size) {
			return false
		}
	}
	return true
}

// TestAndAdd reports whether data might already be present, then adds it.
func (f *Filter) TestAndAdd(data []byte) bool {
	present := f.Test(data)
	f.Add(data)
	return present
}

// TestAndAddString reports whether s might already be present, then adds it.
func (f *Filter) TestAndAddString(s string) bool {
	present := f.TestString(s)
	f.AddString(s)
	return present
}

// Size returns the number of bits in the filter.
func (f *Filter) Size() uint64 {
	return f.size
}

// K returns the number of hash functions used.
func (f *Filter) K() uint32 {
	return f.k
}

// Hasher returns the hash function used to compute positions.
func (f *Filter) Hasher() Hasher {
	return f.hasher
}

// Count returns the number of Add calls. Repeated keys are counted each time.
func (f *Filter) Count() uint64 {
	return f.count
}

// EstimatedFillRatio returns the proportion of bits that are set.
func (f *Filter) EstimatedFillRatio() float64 {
	var setBits uint64
	for _, word := range f.words {
		setBits += uint64(bits.OnesCount64(word))
	}
	return float64(setBits) / float64(f.size)
}

// EstimatedFalsePositiveRate estimates the current false positive rate
// based on the number of items added.
func (f *Filter) EstimatedFalsePositiveRate() float64 {
	return EstimateFalsePositiveRate(f.size, f.k, f.count)
}
