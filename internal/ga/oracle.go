package ga

import (
	"fmt"
	"math"
)

// Point is an index into the distance matrix. Point 0 is the depot.
type Point int

// Depot is the fixed start and end of every tour.
const Depot Point = 0

const symmetryTolerance = 1e-9

// Oracle answers distance queries over a read-only matrix.
// It is safe for concurrent use.
type Oracle struct {
	n    int
	dist []float64 // row-major n*n
}

// NewOracle copies rows into a new Oracle after checking shape, sign and symmetry.
func NewOracle(rows [][]float64) (*Oracle, error) {
	n := len(rows)
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, n)
	}
	dist := make([]float64, n*n)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidMatrix, i, len(row), n)
		}
		for j, d := range row {
			if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
				return nil, fmt.Errorf("%w: entry (%d,%d) = %v", ErrInvalidMatrix, i, j, d)
			}
			dist[i*n+j] = d
		}
	}
	for i := 0; i < n; i++ {
		if dist[i*n+i] != 0 {
			return nil, fmt.Errorf("%w: diagonal (%d,%d) = %v", ErrInvalidMatrix, i, i, dist[i*n+i])
		}
		for j := i + 1; j < n; j++ {
			a, b := dist[i*n+j], dist[j*n+i]
			if math.Abs(a-b) > symmetryTolerance*math.Max(1, math.Max(a, b)) {
				return nil, fmt.Errorf("%w: (%d,%d)=%v but (%d,%d)=%v", ErrInvalidMatrix, i, j, a, j, i, b)
			}
		}
	}
	return &Oracle{n: n, dist: dist}, nil
}

// Size returns the number of points, depot included.
func (o *Oracle) Size() int { return o.n }

// Distance returns the distance between a and b.
// An index outside the matrix is a broken invariant and panics.
func (o *Oracle) Distance(a, b Point) float64 {
	if int(a) < 0 || int(a) >= o.n || int(b) < 0 || int(b) >= o.n {
		panic(fmt.Sprintf("ga: point out of range: (%d,%d) for %d points", a, b, o.n))
	}
	return o.dist[int(a)*o.n+int(b)]
}

// Points returns all non-depot points in index order.
func (o *Oracle) Points() []Point {
	out := make([]Point, 0, o.n-1)
	for i := 1; i < o.n; i++ {
		out = append(out, Point(i))
	}
	return out
}
