package sketch

import "fmt"

// Option configures a Filter, AtomicFilter, Estimator or AtomicEstimator.
type Option func(*options)

type options struct {
	hasher Hasher
}

// WithHasher selects the seeded hash function. The default is XXH3.
func WithHasher(h Hasher) Option {
	return func(o *options) {
		o.hasher = h
	}
}

func buildOptions(opts []Option) (options, error) {
	o := options{hasher: XXH3}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.hasher.valid() {
		return o, fmt.Errorf("%w: unknown hasher %d", ErrInvalidConfiguration, uint8(o.hasher))
	}
	return o, nil
}
