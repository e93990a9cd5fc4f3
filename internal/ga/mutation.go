package ga

import "math/rand"

// Mutate visits every interior position and, with probability rate, swaps it
// with a uniformly drawn interior position. The depot never moves. t itself is
// returned when nothing was swapped.
func Mutate(t *Tour, rate float64, rng *rand.Rand) *Tour {
	l := t.Len()
	var stops []Point
	for i := 1; i <= l-2; i++ {
		if rng.Float64() >= rate {
			continue
		}
		j := 1 + rng.Intn(l-2)
		if stops == nil {
			stops = t.Stops()
		}
		stops[i], stops[j] = stops[j], stops[i]
	}
	if stops == nil {
		return t
	}
	return newTour(t.oracle, stops)
}

// MutatePopulation mutates every individual except the first skip.
func MutatePopulation(pop Population, rate float64, skip int, rng *rand.Rand) Population {
	out := make(Population, len(pop))
	for i, t := range pop {
		if i < skip {
			out[i] = t
			continue
		}
		out[i] = Mutate(t, rate, rng)
	}
	return out
}
