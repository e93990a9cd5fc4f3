package ga

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// euclidean builds a symmetric matrix from planar coordinates.
func euclidean(xy [][2]float64) [][]float64 {
	m := make([][]float64, len(xy))
	for i := range xy {
		m[i] = make([]float64, len(xy))
		for j := range xy {
			m[i][j] = math.Hypot(xy[i][0]-xy[j][0], xy[i][1]-xy[j][1])
		}
	}
	return m
}

func randomPoints(n int, rng *rand.Rand) [][2]float64 {
	xy := make([][2]float64, n)
	for i := range xy {
		xy[i] = [2]float64{rng.Float64() * 100, rng.Float64() * 100}
	}
	return xy
}

func mustOracle(t *testing.T, m [][]float64) *Oracle {
	t.Helper()
	o, err := NewOracle(m)
	require.NoError(t, err)
	return o
}

// unitSquare is a quadrilateral whose optimal tour is the perimeter, 4.
func unitSquare(t *testing.T) *Oracle {
	return mustOracle(t, euclidean([][2]float64{{0, 0}, {0, 1}, {1, 1}, {1, 0}}))
}

func seeded(seed int64) *rand.Rand { return rand.New(rand.NewSource(seed)) }

func tourOf(t *testing.T, o *Oracle, stops ...Point) *Tour {
	t.Helper()
	tr, err := NewTour(o, stops)
	require.NoError(t, err)
	return tr
}

func requireValid(t *testing.T, tr *Tour) {
	t.Helper()
	require.NoError(t, tr.Validate(), "tour %s", tr)
}
