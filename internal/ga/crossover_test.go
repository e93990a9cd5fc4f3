package ga

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCrossoverAtKeepsSegmentThenParentTwoOrder(t *testing.T) {
	o := mustOracle(t, euclidean(randomPoints(6, seeded(51))))
	p1 := tourOf(t, o, 0, 1, 2, 3, 4, 5, 0)
	p2 := tourOf(t, o, 0, 5, 4, 3, 2, 1, 0)
	child := CrossoverAt(p1, p2, 2, 4)
	require.Equal(t, []Point{0, 2, 3, 5, 4, 1, 0}, child.Stops())

	// an empty segment yields parent two's order
	require.Equal(t, p2.Stops(), CrossoverAt(p1, p2, 3, 3).Stops())
}

func TestCrossoverAtEveryCutPairIsValid(t *testing.T) {
	o := mustOracle(t, euclidean(randomPoints(12, seeded(52))))
	rng := seeded(53)
	for trial := 0; trial < 20; trial++ {
		p1, p2 := RandomTour(o, rng), RandomTour(o, rng)
		l := p1.Len()
		for start := 1; start <= l-1; start++ {
			for end := start; end <= l-1; end++ {
				child := CrossoverAt(p1, p2, start, end)
				requireValid(t, child)
				require.Equal(t, p1.Stops()[start:end], child.Stops()[1:1+end-start])
			}
		}
	}
}

func TestCrossoverAtRejectsBadCuts(t *testing.T) {
	o := unitSquare(t)
	p := tourOf(t, o, 0, 1, 2, 3, 0)
	require.Panics(t, func() { CrossoverAt(p, p, 0, 2) })
	require.Panics(t, func() { CrossoverAt(p, p, 1, 5) })
	require.Panics(t, func() { CrossoverAt(p, p, 3, 2) })
}

func TestCrossoverRandomCutsAreValid(t *testing.T) {
	o := mustOracle(t, euclidean(randomPoints(20, seeded(54))))
	rng := seeded(55)
	for i := 0; i < 500; i++ {
		requireValid(t, Crossover(RandomTour(o, rng), RandomTour(o, rng), rng))
	}
}

func TestCrossoverTwoPoints(t *testing.T) {
	o := mustOracle(t, [][]float64{{0, 3}, {3, 0}})
	p := tourOf(t, o, 0, 1, 0)
	rng := seeded(56)
	for i := 0; i < 20; i++ {
		require.Equal(t, []Point{0, 1, 0}, Crossover(p, p, rng).Stops())
	}
}

func TestBreedPopulation(t *testing.T) {
	o := mustOracle(t, euclidean(randomPoints(10, seeded(57))))
	rng := seeded(58)
	pool, err := InitialPopulation(o, 20, rng)
	require.NoError(t, err)

	out := BreedPopulation(pool, 4, rng)
	require.Len(t, out, len(pool))
	for i := 0; i < 4; i++ {
		require.NotSame(t, pool[i], out[i])
		require.Equal(t, pool[i].Stops(), out[i].Stops())
	}
	for _, tr := range out {
		requireValid(t, tr)
		for _, p := range pool {
			require.NotSame(t, p, tr)
		}
	}
}
