package services

import (
	"math/rand/v2"
	"slices"
)

// randomPermutation returns a uniformly shuffled order over n stop positions.
func randomPermutation(n int, rng *rand.Rand) []int {
	order := identityOrder(n)
	rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	return order
}

// tournamentSelect samples k distinct individuals uniformly and returns the
// one with the lowest cost.
func tournamentSelect(pop population, k int, rng *rand.Rand) individual {
	k = min(k, len(pop))
	picked := make([]int, 0, k)
	best := -1

	for len(picked) < k {
		c := rng.IntN(len(pop))
		if slices.Contains(picked, c) {
			continue
		}
		picked = append(picked, c)
		if best < 0 || pop[c].cost < pop[best].cost {
			best = c
		}
	}

	return pop[best]
}

// cutPoints draws two positions and returns them ordered (lo <= hi).
func cutPoints(n int, rng *rand.Rand) (int, int) {
	i, j := rng.IntN(n), rng.IntN(n)
	if i > j {
		i, j = j, i
	}
	return i, j
}

// orderCrossover (OX) copies a[lo..hi] into the child, then fills the other
// positions starting after hi with b's genes in b's order, starting after hi
// and wrapping, skipping genes already placed. Parents are not modified.
func orderCrossover(a, b []int, lo, hi int) []int {
	n := len(a)
	child := make([]int, n)
	placed := make([]bool, n)

	for i := lo; i <= hi; i++ {
		child[i] = a[i]
		placed[a[i]] = true
	}

	pos := (hi + 1) % n
	for k := 0; k < n; k++ {
		g := b[(hi+1+k)%n]
		if placed[g] {
			continue
		}
		child[pos] = g
		placed[g] = true
		pos = (pos + 1) % n
	}

	return child
}

// swapMutation exchanges two uniformly random positions in place.
func swapMutation(genes []int, rng *rand.Rand) {
	if len(genes) < 2 {
		return
	}
	i, j := rng.IntN(len(genes)), rng.IntN(len(genes))
	genes[i], genes[j] = genes[j], genes[i]
}

// inversionMutation reverses a uniformly random contiguous range in place.
func inversionMutation(genes []int, rng *rand.Rand) {
	if len(genes) < 2 {
		return
	}
	lo, hi := cutPoints(len(genes), rng)
	slices.Reverse(genes[lo : hi+1])
}
