package benchmarks

import (
	"fmt"
	"sync"
	"testing"

	"github.com/axiomhq/hyperloglog"
	bab "github.com/bits-and-blooms/bloom/v3"
	"github.com/cespare/xxhash/v2"
	atomicbloom "github.com/ericvolp12/atomic-bloom"
	"github.com/greatroar/blobloom"
	"github.com/jcalabro/sketch"
)

const (
	benchItems  = 1_000_000
	benchFPRate = 0.01
	benchError  = 0.01
)

// Pre-generate test data to avoid measuring string generation
var testKeys [][]byte
var testKeysStr []string

func init() {
	testKeys = make([][]byte, benchItems)
	testKeysStr = make([]string, benchItems)
	for i := range benchItems {
		s := fmt.Sprintf("10.%d.%d.%d", i>>16&0xff, i>>8&0xff, i&0xff)
		testKeys[i] = []byte(s)
		testKeysStr[i] = s
	}
}

func newFilter(b *testing.B, items uint64, opts ...sketch.Option) *sketch.Filter {
	b.Helper()
	f, err := sketch.NewFilterWithEstimates(items, benchFPRate, opts...)
	if err != nil {
		b.Fatal(err)
	}
	return f
}

func newAtomicFilter(b *testing.B, items uint64) *sketch.AtomicFilter {
	b.Helper()
	f, err := sketch.NewAtomicFilterWithEstimates(items, benchFPRate)
	if err != nil {
		b.Fatal(err)
	}
	return f
}

// ============================================================================
// Filter Add
// ============================================================================

func BenchmarkFilterAdd_Sketch(b *testing.B) {
	f := newFilter(b, benchItems)
	b.ResetTimer()
	for i := range b.N {
		f.Add(testKeys[i%benchItems])
	}
}

func BenchmarkFilterAdd_SketchString(b *testing.B) {
	f := newFilter(b, benchItems)
	b.ReportAllocs()
	b.ResetTimer()
	for i := range b.N {
		f.AddString(testKeysStr[i%benchItems])
	}
}

func BenchmarkFilterAdd_SketchHashers(b *testing.B) {
	for _, h := range []sketch.Hasher{sketch.XXH3, sketch.Murmur3, sketch.XXHash} {
		b.Run(h.String(), func(b *testing.B) {
			f := newFilter(b, benchItems, sketch.WithHasher(h))
			b.ResetTimer()
			for i := range b.N {
				f.Add(testKeys[i%benchItems])
			}
		})
	}
}

func BenchmarkFilterAdd_SketchAtomic(b *testing.B) {
	f := newAtomicFilter(b, benchItems)
	b.ResetTimer()
	for i := range b.N {
		f.Add(testKeys[i%benchItems])
	}
}

func BenchmarkFilterAdd_BitsAndBlooms(b *testing.B) {
	f := bab.NewWithEstimates(benchItems, benchFPRate)
	b.ReportAllocs()
	b.ResetTimer()
	for i := range b.N {
		f.Add(testKeys[i%benchItems])
	}
}

func BenchmarkFilterAdd_AtomicBloom(b *testing.B) {
	f := atomicbloom.NewWithEstimates(benchItems, benchFPRate)
	b.ResetTimer()
	for i := range b.N {
		f.Add(testKeys[i%benchItems])
	}
}

func BenchmarkFilterAdd_Blobloom(b *testing.B) {
	f := blobloom.NewOptimized(blobloom.Config{
		Capacity: benchItems,
		FPRate:   benchFPRate,
	})
	b.ResetTimer()
	for i := range b.N {
		// blobloom requires pre-hashing
		f.Add(xxhash.Sum64(testKeys[i%benchItems]))
	}
}

// ============================================================================
// Filter Test
// ============================================================================

func BenchmarkFilterTest_Sketch(b *testing.B) {
	f := newFilter(b, benchItems)
	for i := range benchItems {
		f.Add(testKeys[i])
	}
	b.ResetTimer()
	for i := range b.N {
		f.Test(testKeys[i%benchItems])
	}
}

func BenchmarkFilterTest_SketchAtomic(b *testing.B) {
	f := newAtomicFilter(b, benchItems)
	for i := range benchItems {
		f.Add(testKeys[i])
	}
	b.ResetTimer()
	for i := range b.N {
		f.Test(testKeys[i%benchItems])
	}
}

func BenchmarkFilterTest_BitsAndBlooms(b *testing.B) {
	f := bab.NewWithEstimates(benchItems, benchFPRate)
	for i := range benchItems {
		f.Add(testKeys[i])
	}
	b.ResetTimer()
	for i := range b.N {
		f.Test(testKeys[i%benchItems])
	}
}

func BenchmarkFilterTest_AtomicBloom(b *testing.B) {
	f := atomicbloom.NewWithEstimates(benchItems, benchFPRate)
	for i := range benchItems {
		f.Add(testKeys[i])
	}
	b.ResetTimer()
	for i := range b.N {
		f.Test(testKeys[i%benchItems])
	}
}

func BenchmarkFilterTest_Blobloom(b *testing.B) {
	f := blobloom.NewOptimized(blobloom.Config{
		Capacity: benchItems,
		FPRate:   benchFPRate,
	})
	hashes := make([]uint64, benchItems)
	for i := range benchItems {
		hashes[i] = xxhash.Sum64(testKeys[i])
		f.Add(hashes[i])
	}
	b.ResetTimer()
	for i := range b.N {
		f.Has(hashes[i%benchItems])
	}
}

func BenchmarkFilterTestAndAdd_Sketch(b *testing.B) {
	f := newFilter(b, benchItems)
	b.ResetTimer()
	for i := range b.N {
		f.TestAndAddString(testKeysStr[i%benchItems])
	}
}

func BenchmarkFilterTestAndAdd_BitsAndBlooms(b *testing.B) {
	f := bab.NewWithEstimates(benchItems, benchFPRate)
	b.ResetTimer()
	for i := range b.N {
		f.TestAndAddString(testKeysStr[i%benchItems])
	}
}

// ============================================================================
// Parallel filter benchmarks
// ============================================================================

func BenchmarkFilterMixedParallel_SketchAtomic(b *testing.B) {
	f := newAtomicFilter(b, benchItems)
	for i := 0; i < benchItems/2; i++ {
		f.Add(testKeys[i])
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if i%2 == 0 {
				f.Add(testKeys[(benchItems/2+i)%benchItems])
			} else {
				f.Test(testKeys[i%benchItems])
			}
			i++
		}
	})
}

func BenchmarkFilterMixedParallel_AtomicBloom(b *testing.B) {
	f := atomicbloom.NewWithEstimates(benchItems, benchFPRate)
	for i := 0; i < benchItems/2; i++ {
		f.Add(testKeys[i])
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if i%2 == 0 {
				f.Add(testKeys[(benchItems/2+i)%benchItems])
			} else {
				f.Test(testKeys[i%benchItems])
			}
			i++
		}
	})
}

func BenchmarkFilterHighContention_SketchAtomic(b *testing.B) {
	// small filter so every goroutine hits the same words
	f := newAtomicFilter(b, 1000)
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			f.Add(testKeys[i%1000])
			i++
		}
	})
}

func BenchmarkFilterHighContention_AtomicBloom(b *testing.B) {
	f := atomicbloom.NewWithEstimates(1000, benchFPRate)
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			f.Add(testKeys[i%1000])
			i++
		}
	})
}

// ============================================================================
// Estimator
// ============================================================================

func BenchmarkEstimatorAdd_Sketch(b *testing.B) {
	e, err := sketch.NewEstimator(benchError)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := range b.N {
		e.Add(testKeys[i%benchItems])
	}
}

func BenchmarkEstimatorAdd_SketchAtomic(b *testing.B) {
	e, err := sketch.NewAtomicEstimator(benchError)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := range b.N {
		e.Add(testKeys[i%benchItems])
	}
}

func BenchmarkEstimatorAdd_Axiom(b *testing.B) {
	h := hyperloglog.New14()
	b.ReportAllocs()
	b.ResetTimer()
	for i := range b.N {
		h.Insert(testKeys[i%benchItems])
	}
}

func BenchmarkEstimatorAddParallel_SketchAtomic(b *testing.B) {
	e, err := sketch.NewAtomicEstimator(benchError)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			e.Add(testKeys[i%benchItems])
			i++
		}
	})
}

func BenchmarkEstimatorEstimate_Sketch(b *testing.B) {
	e, err := sketch.NewEstimator(benchError)
	if err != nil {
		b.Fatal(err)
	}
	for i := range benchItems {
		e.Add(testKeys[i])
	}
	b.ResetTimer()
	for range b.N {
		_ = e.Estimate()
	}
}

func BenchmarkEstimatorEstimate_Axiom(b *testing.B) {
	h := hyperloglog.New14()
	for i := range benchItems {
		h.Insert(testKeys[i])
	}
	b.ResetTimer()
	for range b.N {
		_ = h.Estimate()
	}
}

func BenchmarkEstimatorMerge_Sketch(b *testing.B) {
	x, _ := sketch.NewEstimator(benchError)
	y, _ := sketch.NewEstimator(benchError)
	for i := range benchItems / 2 {
		x.Add(testKeys[i])
		y.Add(testKeys[benchItems/2+i])
	}
	b.ResetTimer()
	for range b.N {
		if err := x.Merge(y); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEstimatorMerge_Axiom(b *testing.B) {
	x := hyperloglog.New14()
	y := hyperloglog.New14()
	for i := range benchItems / 2 {
		x.Insert(testKeys[i])
		y.Insert(testKeys[benchItems/2+i])
	}
	b.ResetTimer()
	for range b.N {
		if err := x.Merge(y); err != nil {
			b.Fatal(err)
		}
	}
}

// ============================================================================
// Throughput (items per second)
// ============================================================================

func BenchmarkThroughput_SketchAtomicFilter(b *testing.B) {
	const goroutines = 8
	const itemsPerGoroutine = 100000

	f := newAtomicFilter(b, uint64(goroutines*itemsPerGoroutine))

	b.ResetTimer()
	for range b.N {
		var wg sync.WaitGroup
		wg.Add(goroutines)
		for g := range goroutines {
			go func(gid int) {
				defer wg.Done()
				base := gid * itemsPerGoroutine
				for i := range itemsPerGoroutine {
					f.Add(testKeys[(base+i)%benchItems])
				}
			}(g)
		}
		wg.Wait()
	}
	b.ReportMetric(float64(goroutines*itemsPerGoroutine), "items/op")
}

func BenchmarkThroughput_SketchAtomicEstimator(b *testing.B) {
	const goroutines = 8
	const itemsPerGoroutine = 100000

	e, err := sketch.NewAtomicEstimator(benchError)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for range b.N {
		var wg sync.WaitGroup
		wg.Add(goroutines)
		for g := range goroutines {
			go func(gid int) {
				defer wg.Done()
				base := gid * itemsPerGoroutine
				for i := range itemsPerGoroutine {
					e.Add(testKeys[(base+i)%benchItems])
				}
			}(g)
		}
		wg.Wait()
	}
	b.ReportMetric(float64(goroutines*itemsPerGoroutine), "items/op")
}
