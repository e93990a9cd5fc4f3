package ga

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTourLengthCountsReturnLegOnce(t *testing.T) {
	o := mustOracle(t, [][]float64{
		{0, 1, 5},
		{1, 0, 2},
		{5, 2, 0},
	})
	tr := tourOf(t, o, 0, 1, 2, 0)
	l, err := tr.Length()
	require.NoError(t, err)
	require.Equal(t, 8.0, l)

	f, err := tr.Fitness()
	require.NoError(t, err)
	require.Equal(t, 1.0/8, f)
}

func TestTourFitnessIsMemoized(t *testing.T) {
	o := mustOracle(t, euclidean(randomPoints(9, seeded(3))))
	tr := RandomTour(o, seeded(4))
	f1, err := tr.Fitness()
	require.NoError(t, err)
	f2, err := tr.Fitness()
	require.NoError(t, err)
	require.Equal(t, f1, f2)

	// a mutated copy is a new tour and is evaluated on its own order
	m := Mutate(tr, 1, seeded(5))
	require.NotSame(t, tr, m)
	var want float64
	for i := 0; i < m.Len()-1; i++ {
		want += o.Distance(m.At(i), m.At(i+1))
	}
	got, err := m.Length()
	require.NoError(t, err)
	require.InDelta(t, want, got, 1e-9)

	again, err := tr.Fitness()
	require.NoError(t, err)
	require.Equal(t, f1, again)
}

func TestTourZeroLengthFails(t *testing.T) {
	o := mustOracle(t, [][]float64{{0, 0}, {0, 0}})
	tr := tourOf(t, o, 0, 1, 0)
	_, err := tr.Length()
	require.ErrorIs(t, err, ErrZeroLength)
	f, err := tr.Fitness()
	require.ErrorIs(t, err, ErrZeroLength)
	require.False(t, math.IsInf(f, 0))
}

func TestNewTourValidates(t *testing.T) {
	o := unitSquare(t)
	cases := map[string][]Point{
		"short":        {0, 1, 2, 0},
		"no depot":     {1, 2, 3, 0, 1},
		"open end":     {0, 1, 2, 3, 1},
		"duplicate":    {0, 1, 1, 3, 0},
		"out of range": {0, 1, 2, 4, 0},
		"depot inside": {0, 1, 0, 3, 0},
	}
	for name, stops := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewTour(o, stops)
			require.ErrorIs(t, err, ErrInvalidTour)
		})
	}

	stops := []Point{0, 3, 2, 1, 0}
	tr := tourOf(t, o, stops...)
	stops[1] = 1
	require.Equal(t, Point(3), tr.At(1))
	require.Equal(t, "0-3-2-1-0", tr.String())
}

func TestMustValidPanicsOnMalformedTour(t *testing.T) {
	o := unitSquare(t)
	require.Panics(t, func() { mustValid(newTour(o, []Point{0, 2, 2, 3, 0})) })
	require.NotPanics(t, func() { mustValid(newTour(o, []Point{0, 2, 1, 3, 0})) })
}

func TestCloneKeepsStopsAndLength(t *testing.T) {
	o := unitSquare(t)
	tr := tourOf(t, o, 0, 2, 1, 3, 0)
	c := tr.clone()
	require.NotSame(t, tr, c)
	require.Equal(t, tr.Stops(), c.Stops())
	l1, _ := tr.Length()
	l2, _ := c.Length()
	require.Equal(t, l1, l2)
}
