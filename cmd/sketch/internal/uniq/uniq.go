// Package uniq classifies candidate keys as unique or already used with a
// bloom filter. Keys are validated before they reach the filter; a key that
// passes the check is inserted in the same step, so a later occurrence of the
// same key is reported as already used.
package uniq

import (
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	// ErrEmpty rejects the empty string.
	ErrEmpty = errors.New("uniq: empty key")
	// ErrBlank rejects keys made only of whitespace.
	ErrBlank = errors.New("uniq: blank key")
)

// Input is the result of validating a raw candidate. Err is nil for a valid
// key.
type Input struct {
	Key string
	Err error
}

// Valid reports whether the input may be passed to a filter.
func (in Input) Valid() bool {
	return in.Err == nil
}

// Validate checks raw and returns it tagged as valid or rejected. Valid keys
// are returned unchanged; surrounding whitespace is kept.
func Validate(raw string) Input {
	switch {
	case raw == "":
		return Input{Key: raw, Err: ErrEmpty}
	case strings.TrimSpace(raw) == "":
		return Input{Key: raw, Err: ErrBlank}
	default:
		return Input{Key: raw}
	}
}

// Verdict is the classification of a candidate key.
type Verdict int

const (
	Unique Verdict = iota
	AlreadyUsed
	Invalid
)

func (v Verdict) String() string {
	switch v {
	case Unique:
		return "unique"
	case AlreadyUsed:
		return "already used"
	case Invalid:
		return "invalid input"
	default:
		return "unknown"
	}
}

// Result pairs a candidate with its verdict. Err is set for Invalid results.
type Result struct {
	Key     string
	Verdict Verdict
	Err     error
}

// Set is the membership structure a Checker drives. *sketch.Filter and
// *sketch.AtomicFilter satisfy it.
type Set interface {
	TestAndAddString(s string) bool
}

// Checker classifies keys against a Set. Check-then-insert runs under a
// single lock, so concurrent callers never both see the same new key as
// unique.
type Checker struct {
	mu  sync.Mutex
	set Set
	log zerolog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithLogger sets the logger used for per-key debug events.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Checker) {
		c.log = l
	}
}

// New returns a Checker backed by set. The caller owns set; it is never
// shared between Checkers implicitly.
func New(set Set, opts ...Option) *Checker {
	c := &Checker{
		set: set,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Seed records keys as already used. Invalid keys are skipped and counted in
// the return value.
func (c *Checker) Seed(keys ...string) (skipped int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, k := range keys {
		in := Validate(k)
		if !in.Valid() {
			c.log.Warn().Err(in.Err).Str("key", k).Msg("[uniq] skipping invalid seed key")
			skipped++
			continue
		}
		c.set.TestAndAddString(in.Key)
	}
	return skipped
}

// Check validates raw and classifies it. A unique key is inserted before
// Check returns.
func (c *Checker) Check(raw string) Result {
	in := Validate(raw)
	if !in.Valid() {
		c.log.Debug().Err(in.Err).Str("key", raw).Msg("[uniq] rejected")
		return Result{Key: raw, Verdict: Invalid, Err: in.Err}
	}

	c.mu.Lock()
	used := c.set.TestAndAddString(in.Key)
	c.mu.Unlock()

	v := Unique
	if used {
		v = AlreadyUsed
	}
	c.log.Debug().Str("key", in.Key).Str("verdict", v.String()).Msg("[uniq] checked")
	return Result{Key: in.Key, Verdict: v}
}

// CheckAll classifies every candidate in order. Duplicates within raws each
// get their own result: the first occurrence of a new key is Unique and the
// rest are AlreadyUsed.
func (c *Checker) CheckAll(raws []string) []Result {
	results := make([]Result, 0, len(raws))
	for _, raw := range raws {
		results = append(results, c.Check(raw))
	}
	return results
}
