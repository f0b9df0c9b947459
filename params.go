package sketch

import (
	"fmt"
	"math"
)

const (
	// ln2 is the natural logarithm of 2.
	ln2 = 0.6931471805599453
	// ln2Squared is ln(2)^2.
	ln2Squared = 0.4804530139182014

	// MinPrecision is the smallest supported estimator precision (16 registers).
	MinPrecision = 4
	// MaxPrecision is the largest supported estimator precision (262144 registers).
	MaxPrecision = 18

	// hashBits is the width of the hash consumed by the estimator.
	hashBits = 64

	// stdErrorFactor is the HyperLogLog standard error constant: 1.04/sqrt(m).
	stdErrorFactor = 1.04
)

// OptimalParams calculates bloom filter parameters for the expected number of
// items and desired false positive rate.
// Returns the number of bits and the number of hash functions (k).
func OptimalParams(expectedItems uint64, fpRate float64) (size uint64, k uint32) {
	if expectedItems == 0 {
		expectedItems = 1
	}
	if fpRate <= 0 {
		fpRate = 0.0001 // default to 0.01%
	}
	if fpRate >= 1 {
		fpRate = 0.99
	}

	// Optimal bits: -n * ln(fpRate) / ln(2)^2
	size = uint64(math.Ceil(-float64(expectedItems) * math.Log(fpRate) / ln2Squared))
	size = max(size, 1)

	// Optimal k: (m/n) * ln(2)
	kFloat := float64(size) / float64(expectedItems) * ln2
	k = uint32(math.Round(kFloat))
	k = max(k, 1)

	return size, k
}

// EstimateFalsePositiveRate estimates the false positive rate for a filter of
// size bits and k hash functions after itemsAdded insertions.
// Formula: (1 - e^(-kn/m))^k
func EstimateFalsePositiveRate(size uint64, k uint32, itemsAdded uint64) float64 {
	m := float64(size)
	n := float64(itemsAdded)
	kf := float64(k)

	if m == 0 || n == 0 {
		return 0
	}

	return math.Pow(1-math.Exp(-kf*n/m), kf)
}

// PrecisionForError returns the smallest precision p whose standard error
// 1.04/sqrt(2^p) does not exceed targetError. The result is never below
// MinPrecision. Targets outside (0, 1), or targets that would need more than
// MaxPrecision, return ErrInvalidConfiguration.
func PrecisionForError(targetError float64) (uint8, error) {
	if !(targetError > 0 && targetError < 1) {
		return 0, fmt.Errorf("%w: target error %v must be in (0, 1)", ErrInvalidConfiguration, targetError)
	}

	ratio := stdErrorFactor / targetError
	p := math.Ceil(math.Log2(ratio * ratio))
	p = max(p, MinPrecision)
	if p > MaxPrecision {
		return 0, fmt.Errorf("%w: target error %v needs precision %v, max is %d",
			ErrInvalidConfiguration, targetError, p, MaxPrecision)
	}

	return uint8(p), nil
}

// StandardError returns the expected relative standard error of an estimator
// with precision p.
func StandardError(p uint8) float64 {
	return stdErrorFactor / math.Sqrt(float64(uint64(1)<<p))
}

// alpha returns the bias correction constant for m = 2^p registers.
func alpha(p uint8) float64 {
	switch p {
	case 4:
		return 0.673
	case 5:
		return 0.697
	case 6:
		return 0.709
	default:
		return 0.7213 / (1 + 1.079/float64(uint64(1)<<p))
	}
}
