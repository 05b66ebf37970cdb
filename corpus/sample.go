package corpus

import "math/rand/v2"

// Window is a contiguous range [Start, End) of sentence indices.
type Window struct {
	Start int
	End   int
}

// Len returns the number of sentences in the window.
func (w Window) Len() int {
	return w.End - w.Start
}

// SampleWindow picks a contiguous window covering int(n*ratio) of n
// sentences, starting at a position drawn from rng. A ratio of 1 always
// yields the whole range.
func SampleWindow(n int, ratio float64, rng *rand.Rand) Window {
	size := int(float64(n) * ratio)
	if size > n {
		size = n
	}
	if size <= 0 {
		return Window{}
	}

	start := 0
	if slack := n - size; slack > 0 {
		start = rng.IntN(slack)
	}
	return Window{Start: start, End: start + size}
}
