package ga

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitialPopulationIsValid(t *testing.T) {
	o := mustOracle(t, euclidean(randomPoints(15, seeded(1))))
	pop, err := InitialPopulation(o, 40, seeded(2))
	require.NoError(t, err)
	require.Len(t, pop, 40)
	for _, tr := range pop {
		requireValid(t, tr)
	}

	_, err = InitialPopulation(o, 0, seeded(2))
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRandomTourIsUniform(t *testing.T) {
	o := unitSquare(t)
	rng := seeded(11)
	const draws = 6000
	counts := map[string]int{}
	for i := 0; i < draws; i++ {
		counts[RandomTour(o, rng).String()]++
	}
	require.Len(t, counts, 6)
	for perm, c := range counts {
		require.InDelta(t, draws/6, c, draws/6*0.15, "permutation %s", perm)
	}
}

func TestPopulationDistances(t *testing.T) {
	o := unitSquare(t)
	pop := Population{tourOf(t, o, 0, 1, 2, 3, 0), tourOf(t, o, 0, 2, 1, 3, 0)}
	d, err := pop.Distances()
	require.NoError(t, err)
	require.InDelta(t, 4.0, d[0], 1e-12)
	require.InDelta(t, 2+2*1.4142135623730951, d[1], 1e-12)
}
