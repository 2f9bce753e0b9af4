package moran

import (
	"math/rand"
	"sort"
)

// cumulativeSum writes the running sums of weights into dst (reusing its
// capacity) and returns it.
func cumulativeSum(weights []float64, dst []float64) []float64 {
	dst = dst[:0]
	total := 0.0
	for _, w := range weights {
		total += w
		dst = append(dst, total)
	}

	return dst
}

// searchCumulative returns the first index whose cumulative weight is
// strictly greater than x. Zero-weight entries are never selected.
func searchCumulative(cumulative []float64, x float64) int {
	i := sort.Search(len(cumulative), func(i int) bool {
		return cumulative[i] > x
	})

	// Guard against x landing on the total through rounding.
	if i == len(cumulative) {
		i--
		for i > 0 && cumulative[i] == cumulative[i-1] {
			i--
		}
	}

	return i
}

// sampleProportional draws an index with probability proportional to
// its weight. Weights must be non-negative; if they are all zero the
// draw is uniform.
func sampleProportional(rng *rand.Rand, weights []float64, scratch []float64) int {
	cumulative := cumulativeSum(weights, scratch)
	total := cumulative[len(cumulative)-1]
	if total <= 0 {
		return rng.Intn(len(weights))
	}

	return searchCumulative(cumulative, rng.Float64()*total)
}
