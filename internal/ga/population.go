package ga

import (
	"fmt"
	"math/rand"
)

// Population is one generation of tours.
type Population []*Tour

// RandomTour returns a tour whose interior is a uniform random permutation of
// every non-depot point.
func RandomTour(o *Oracle, rng *rand.Rand) *Tour {
	n := o.Size()
	stops := make([]Point, n+1)
	for i := 1; i < n; i++ {
		stops[i] = Point(i)
	}
	interior := stops[1:n]
	rng.Shuffle(len(interior), func(i, j int) { interior[i], interior[j] = interior[j], interior[i] })
	stops[0], stops[n] = Depot, Depot
	return newTour(o, stops)
}

// InitialPopulation builds size random tours over o.
func InitialPopulation(o *Oracle, size int, rng *rand.Rand) (Population, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: population size %d", ErrInvalidConfig, size)
	}
	pop := make(Population, size)
	for i := range pop {
		pop[i] = RandomTour(o, rng)
	}
	return pop, nil
}

// Distances returns the length of every tour in population order.
func (p Population) Distances() ([]float64, error) {
	out := make([]float64, len(p))
	for i, t := range p {
		l, err := t.Length()
		if err != nil {
			return nil, fmt.Errorf("individual %d: %w", i, err)
		}
		out[i] = l
	}
	return out, nil
}
