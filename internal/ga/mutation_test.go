package ga

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMutateZeroRateReturnsSameTour(t *testing.T) {
	o := mustOracle(t, euclidean(randomPoints(8, seeded(61))))
	tr := RandomTour(o, seeded(62))
	require.Same(t, tr, Mutate(tr, 0, seeded(63)))
}

func TestMutateKeepsTourValid(t *testing.T) {
	o := mustOracle(t, euclidean(randomPoints(15, seeded(64))))
	rng := seeded(65)
	for i := 0; i < 300; i++ {
		tr := RandomTour(o, rng)
		before := tr.Stops()
		m := Mutate(tr, 0.3, rng)
		requireValid(t, m)
		require.Equal(t, before, tr.Stops())
	}
}

func TestMutateFullRateMovesPoints(t *testing.T) {
	o := mustOracle(t, euclidean(randomPoints(30, seeded(66))))
	tr := RandomTour(o, seeded(67))
	m := Mutate(tr, 1, seeded(68))
	requireValid(t, m)
	require.NotEqual(t, tr.Stops(), m.Stops())
	require.Equal(t, Depot, m.At(0))
	require.Equal(t, Depot, m.At(m.Len()-1))
}

func TestMutatePopulationSkipsElites(t *testing.T) {
	o := mustOracle(t, euclidean(randomPoints(12, seeded(69))))
	rng := seeded(70)
	pop, err := InitialPopulation(o, 10, rng)
	require.NoError(t, err)

	out := MutatePopulation(pop, 1, 3, rng)
	require.Len(t, out, len(pop))
	for i := 0; i < 3; i++ {
		require.Same(t, pop[i], out[i])
	}
	for i := 3; i < len(out); i++ {
		require.NotSame(t, pop[i], out[i])
		requireValid(t, out[i])
	}
}
