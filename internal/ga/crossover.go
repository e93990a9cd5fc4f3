package ga

import (
	"fmt"
	"math/rand"
)

// Crossover draws two cut points uniformly from [1, L-1] and returns
// CrossoverAt for the ordered pair.
func Crossover(p1, p2 *Tour, rng *rand.Rand) *Tour {
	l := p1.Len()
	geneA := 1 + rng.Intn(l-1)
	geneB := 1 + rng.Intn(l-1)
	return CrossoverAt(p1, p2, min(geneA, geneB), max(geneA, geneB))
}

// CrossoverAt is ordered crossover with a fixed depot. The child keeps
// p1[start:end] after the depot, then every remaining point in p2's order,
// then the depot again.
func CrossoverAt(p1, p2 *Tour, start, end int) *Tour {
	l := p1.Len()
	if p2.Len() != l {
		panic(fmt.Sprintf("ga: crossover of tours with %d and %d stops", l, p2.Len()))
	}
	if start < 1 || end > l-1 || start > end {
		panic(fmt.Sprintf("ga: crossover cut [%d,%d) outside [1,%d]", start, end, l-1))
	}
	used := make([]bool, p1.oracle.Size())
	child := make([]Point, 0, l)
	child = append(child, p1.stops[0])
	used[p1.stops[0]] = true
	for _, p := range p1.stops[start:end] {
		child = append(child, p)
		used[p] = true
	}
	for _, p := range p2.stops {
		if !used[p] {
			child = append(child, p)
			used[p] = true
		}
	}
	child = append(child, p1.stops[l-1])
	return newTour(p1.oracle, child)
}

// BreedPopulation passes the first eliteSize pool entries through and fills
// the rest with children of mirrored pairs from a shuffled copy of the pool.
func BreedPopulation(pool Population, eliteSize int, rng *rand.Rand) Population {
	if eliteSize > len(pool) {
		eliteSize = len(pool)
	}
	out := make(Population, 0, len(pool))
	for i := 0; i < eliteSize; i++ {
		out = append(out, pool[i].clone())
	}
	shuffled := append(Population(nil), pool...)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	n := len(shuffled)
	for i := 0; i < n-eliteSize; i++ {
		out = append(out, Crossover(shuffled[i], shuffled[n-1-i], rng))
	}
	return out
}
