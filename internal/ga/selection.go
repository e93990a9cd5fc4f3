package ga

import (
	"fmt"
	"math/rand"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Ranked pairs a population index with its fitness.
type Ranked struct {
	Index   int
	Fitness float64
}

// RankTable is sorted by fitness, best first.
type RankTable []Ranked

// Rank evaluates every tour in pop and sorts them by fitness, best first.
// Ties keep population order. With parallelism > 1 evaluation runs on up to
// that many goroutines.
func Rank(pop Population, parallelism int) (RankTable, error) {
	rt := make(RankTable, len(pop))
	eval := func(i int) error {
		f, err := pop[i].Fitness()
		if err != nil {
			return fmt.Errorf("rank individual %d: %w", i, err)
		}
		rt[i] = Ranked{Index: i, Fitness: f}
		return nil
	}
	if parallelism <= 1 {
		for i := range pop {
			if err := eval(i); err != nil {
				return nil, err
			}
		}
	} else {
		var g errgroup.Group
		g.SetLimit(parallelism)
		for i := range pop {
			g.Go(func() error { return eval(i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	sort.SliceStable(rt, func(i, j int) bool { return rt[i].Fitness > rt[j].Fitness })
	return rt, nil
}

// SelectElite returns len(rt) population indices: the eliteSize best, then
// roulette-wheel picks weighted by fitness share. Indices may repeat.
func SelectElite(rt RankTable, eliteSize int, rng *rand.Rand) []int {
	if eliteSize > len(rt) {
		eliteSize = len(rt)
	}
	out := make([]int, 0, len(rt))
	for i := 0; i < eliteSize; i++ {
		out = append(out, rt[i].Index)
	}
	if len(rt) == eliteSize {
		return out
	}
	cum := cumulativePercent(rt)
	for i := eliteSize; i < len(rt); i++ {
		threshold := 100 * rng.Float64()
		k := sort.SearchFloat64s(cum, threshold)
		if k == len(cum) {
			// rounding left the running total just under 100
			k = len(cum) - 1
		}
		out = append(out, rt[k].Index)
	}
	return out
}

// cumulativePercent returns the running share of total fitness, in percent,
// along the ranked order.
func cumulativePercent(rt RankTable) []float64 {
	total := 0.0
	for _, r := range rt {
		total += r.Fitness
	}
	cum := make([]float64, len(rt))
	sum := 0.0
	for i, r := range rt {
		sum += r.Fitness
		cum[i] = 100 * sum / total
	}
	return cum
}

// MatingPool maps selected indices to their tours.
func MatingPool(pop Population, idx []int) Population {
	pool := make(Population, len(idx))
	for i, k := range idx {
		pool[i] = pop[k]
	}
	return pool
}
