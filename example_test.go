package sketch_test

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jcalabro/sketch"
)

// This example demonstrates basic bloom filter usage for membership testing.
func Example() {
	// 1000 bits, 3 hash functions
	f, err := sketch.NewFilter(1000, 3)
	if err != nil {
		panic(err)
	}

	f.AddString("password123")
	f.AddString("admin123")
	f.AddString("qwerty123")

	fmt.Println("password123:", f.TestString("password123")) // true (added)
	fmt.Println("newpassword:", f.TestString("newpassword")) // false (not added)

	// Output:
	// password123: true
	// newpassword: false
}

// This example counts distinct keys with a 1% standard error target.
func Example_estimator() {
	e, err := sketch.NewEstimator(0.01)
	if err != nil {
		panic(err)
	}

	for i := range 1000 {
		// every key is added three times
		for range 3 {
			e.AddString(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
		}
	}

	fmt.Println("Registers:", e.NumRegisters())
	fmt.Println("Close to 1000:", e.Count() > 970 && e.Count() < 1030)

	// Output:
	// Registers: 16384
	// Close to 1000: true
}

// This example merges estimators built over different streams.
func Example_merge() {
	morning, _ := sketch.NewEstimator(0.01)
	evening, _ := sketch.NewEstimator(0.01)

	for i := range 500 {
		morning.AddString(fmt.Sprintf("user-%d", i))
		evening.AddString(fmt.Sprintf("user-%d", i+250))
	}

	day, err := sketch.Union(morning, evening)
	if err != nil {
		panic(err)
	}
	fmt.Println("Close to 750:", day.Count() > 720 && day.Count() < 780)

	coarse, _ := sketch.NewEstimator(0.05)
	err = day.Merge(coarse)
	fmt.Println("Incompatible:", errors.Is(err, sketch.ErrIncompatibleEstimator))

	// Output:
	// Close to 750: true
	// Incompatible: true
}

// This example demonstrates using AtomicFilter for concurrent access.
func Example_concurrent() {
	// AtomicFilter is safe for concurrent Add and Test
	f, err := sketch.NewAtomicFilterWithEstimates(100_000, 0.01)
	if err != nil {
		panic(err)
	}

	var wg sync.WaitGroup

	for i := range 4 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := range 1000 {
				key := fmt.Sprintf("worker-%d-item-%d", id, j)
				f.AddString(key)
			}
		}(i)
	}

	for i := range 4 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := range 1000 {
				key := fmt.Sprintf("worker-%d-item-%d", id, j)
				_ = f.TestString(key)
			}
		}(i)
	}

	wg.Wait()
	fmt.Println("Items added:", f.Count())

	// Output:
	// Items added: 4000
}

// This example shows the positions a key maps to.
func Example_positions() {
	f, _ := sketch.NewFilter(1000, 3)

	var n int
	for pos := range f.Positions("guest") {
		if pos < f.Size() {
			n++
		}
	}
	fmt.Println("Positions:", n)

	// Output:
	// Positions: 3
}

func ExampleNewFilter() {
	_, err := sketch.NewFilter(0, 3)
	fmt.Println(errors.Is(err, sketch.ErrInvalidConfiguration))

	// Output:
	// true
}

func ExampleOptimalParams() {
	size, k := sketch.OptimalParams(1_000_000, 0.01)

	fmt.Printf("For 1M items at 1%% FP rate:\n")
	fmt.Printf("  Bits: %d\n", size)
	fmt.Printf("  Hash functions (k): %d\n", k)

	// Output:
	// For 1M items at 1% FP rate:
	//   Bits: 9585059
	//   Hash functions (k): 7
}

func ExamplePrecisionForError() {
	p, _ := sketch.PrecisionForError(0.01)
	fmt.Printf("p=%d m=%d stderr=%.4f\n", p, 1<<p, sketch.StandardError(p))

	// Output:
	// p=14 m=16384 stderr=0.0081
}

func ExampleEstimateFalsePositiveRate() {
	rate := sketch.EstimateFalsePositiveRate(1000, 3, 3)
	fmt.Printf("Estimated FP rate: %.7f%%\n", rate*100)

	// Output:
	// Estimated FP rate: 0.0000719%
}
