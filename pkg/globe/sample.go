package globe

import "math/rand"

// shuffleThreshold is the range size above which SampleIndices stops using
// rejection sampling.
const shuffleThreshold = 256

// SampleIndices draws count distinct integers uniformly from [min, max).
//
// Small ranges use rejection sampling: uniform draws in the range, repeats
// discarded until count values are collected. Larger ranges use a partial
// Fisher-Yates shuffle so the cost stays linear. count is clamped to the
// size of the range; an empty range yields nil.
func SampleIndices(rng *rand.Rand, min, max, count int) []int {
	n := max - min
	if n <= 0 || count <= 0 {
		return nil
	}
	if count > n {
		count = n
	}

	if n > shuffleThreshold {
		pool := make([]int, n)
		for i := range pool {
			pool[i] = min + i
		}
		for i := 0; i < count; i++ {
			j := i + rng.Intn(n-i)
			pool[i], pool[j] = pool[j], pool[i]
		}
		return pool[:count]
	}

	out := make([]int, 0, count)
	seen := make(map[int]struct{}, count)
	for len(out) < count {
		r := min + rng.Intn(n)
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// RingCount is the number of rings pulsed per tick for arcCount arcs.
func RingCount(arcCount int) int {
	return arcCount * 4 / 5
}

// SelectRings returns the points at the given indices, in point order.
// Indices outside the point slice select nothing.
func SelectRings(points []Point, indices []int) []Point {
	if len(indices) == 0 {
		return []Point{}
	}
	want := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		want[i] = struct{}{}
	}
	out := make([]Point, 0, len(indices))
	for i, p := range points {
		if _, ok := want[i]; ok {
			out = append(out, p)
		}
	}
	return out
}
