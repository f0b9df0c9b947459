package sketch

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"
)

// Hasher selects the seeded 64-bit hash function used to map keys to bit
// positions and register indexes. Every Hasher is deterministic across
// processes: the same (key, seed) pair always produces the same value.
type Hasher uint8

const (
	// XXH3 is the default hasher.
	XXH3 Hasher = iota
	// Murmur3 uses the 64-bit half of MurmurHash3 x64_128.
	Murmur3
	// XXHash uses xxHash64.
	XXHash

	numHashers
)

var hasherNames = [numHashers]string{
	XXH3:    "xxh3",
	Murmur3: "murmur3",
	XXHash:  "xxhash",
}

// ParseHasher returns the Hasher with the given name.
func ParseHasher(name string) (Hasher, error) {
	for h, n := range hasherNames {
		if n == name {
			return Hasher(h), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown hasher %q", ErrInvalidConfiguration, name)
}

// String returns the hasher name.
func (h Hasher) String() string {
	if !h.valid() {
		return fmt.Sprintf("Hasher(%d)", uint8(h))
	}
	return hasherNames[h]
}

func (h Hasher) valid() bool {
	return h < numHashers
}

// Sum64 hashes data with the given seed.
func (h Hasher) Sum64(data []byte, seed uint64) uint64 {
	switch h {
	case Murmur3:
		return murmur3.Sum64WithSeed(data, uint32(seed))
	case XXHash:
		d := xxhash.NewWithSeed(seed)
		_, _ = d.Write(data)
		return d.Sum64()
	default:
		return xxh3.HashSeed(data, seed)
	}
}

// SumString64 hashes s with the given seed. The xxh3 and xxhash paths do not
// allocate.
func (h Hasher) SumString64(s string, seed uint64) uint64 {
	switch h {
	case Murmur3:
		return murmur3.Sum64WithSeed([]byte(s), uint32(seed))
	case XXHash:
		d := xxhash.NewWithSeed(seed)
		_, _ = d.WriteString(s)
		return d.Sum64()
	default:
		return xxh3.HashStringSeed(s, seed)
	}
}
