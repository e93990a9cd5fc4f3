package ga

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Tour is a closed route that starts and ends at the depot.
// Tours are never modified after construction; operators return new tours.
// Length and fitness are computed on first use and cached.
type Tour struct {
	oracle *Oracle
	stops  []Point

	once   sync.Once
	length float64
}

// NewTour validates stops against o and returns a tour over a private copy of them.
func NewTour(o *Oracle, stops []Point) (*Tour, error) {
	t := newTour(o, append([]Point(nil), stops...))
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// newTour takes ownership of stops without validating them.
func newTour(o *Oracle, stops []Point) *Tour {
	return &Tour{oracle: o, stops: stops}
}

// Stops returns a copy of the point sequence, depot at both ends.
func (t *Tour) Stops() []Point {
	return append([]Point(nil), t.stops...)
}

// Len returns the number of stops, depot counted twice.
func (t *Tour) Len() int { return len(t.stops) }

// At returns the point at position i.
func (t *Tour) At(i int) Point { return t.stops[i] }

// Length returns the total distance of the tour. The return leg is the last
// consecutive pair since the depot is stored at both ends.
func (t *Tour) Length() (float64, error) {
	t.once.Do(func() {
		total := 0.0
		for i := 0; i < len(t.stops)-1; i++ {
			total += t.oracle.Distance(t.stops[i], t.stops[i+1])
		}
		t.length = total
	})
	if t.length == 0 {
		return 0, fmt.Errorf("%w: %s", ErrZeroLength, t)
	}
	return t.length, nil
}

// Fitness returns 1/Length. Higher is better.
func (t *Tour) Fitness() (float64, error) {
	l, err := t.Length()
	if err != nil {
		return 0, err
	}
	return 1 / l, nil
}

// Validate reports whether the tour starts and ends at the depot and visits
// every other point exactly once.
func (t *Tour) Validate() error {
	n := t.oracle.Size()
	if len(t.stops) != n+1 {
		return fmt.Errorf("%w: %d stops for %d points", ErrInvalidTour, len(t.stops), n)
	}
	if t.stops[0] != Depot || t.stops[n] != Depot {
		return fmt.Errorf("%w: endpoints %d,%d are not the depot", ErrInvalidTour, t.stops[0], t.stops[n])
	}
	seen := make([]bool, n)
	for _, p := range t.stops[1:n] {
		if p <= Depot || int(p) >= n {
			return fmt.Errorf("%w: interior point %d out of range", ErrInvalidTour, p)
		}
		if seen[p] {
			return fmt.Errorf("%w: point %d visited twice", ErrInvalidTour, p)
		}
		seen[p] = true
	}
	return nil
}

// clone returns an independent tour with the same stops and cached length.
func (t *Tour) clone() *Tour {
	c := newTour(t.oracle, t.Stops())
	if l, err := t.Length(); err == nil {
		c.once.Do(func() { c.length = l })
	}
	return c
}

func (t *Tour) String() string {
	var b strings.Builder
	for i, p := range t.stops {
		if i > 0 {
			b.WriteByte('-')
		}
		b.WriteString(strconv.Itoa(int(p)))
	}
	return b.String()
}

// mustValid panics when t breaks the tour invariant.
func mustValid(t *Tour) {
	if err := t.Validate(); err != nil {
		panic(fmt.Sprintf("ga: operator produced malformed tour %s: %v", t, err))
	}
}
