package ga

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Config holds the engine parameters.
type Config struct {
	PopulationSize int     `json:"populationSize" yaml:"populationSize"`
	EliteSize      int     `json:"eliteSize" yaml:"eliteSize"`
	MutationRate   float64 `json:"mutationRate" yaml:"mutationRate"`
	Generations    int     `json:"generations" yaml:"generations"`

	// Seed for the random source; 0 seeds from the clock.
	Seed int64 `json:"seed,omitempty" yaml:"seed"`
	// Parallelism bounds concurrent fitness evaluation; <= 1 is serial.
	Parallelism int `json:"parallelism,omitempty" yaml:"parallelism"`
	// MutateElites also mutates the individuals carried over unchanged by elitism.
	MutateElites bool `json:"mutateElites,omitempty" yaml:"mutateElites"`
	// ProgressEvery reports stats every N generations; 0 reports only the first and last.
	ProgressEvery int `json:"progressEvery,omitempty" yaml:"progressEvery"`
}

// Validate checks c before any generation runs.
func (c Config) Validate() error {
	if c.PopulationSize < 2 {
		return fmt.Errorf("%w: populationSize must be >= 2 (got %d)", ErrInvalidConfig, c.PopulationSize)
	}
	if c.EliteSize < 1 || c.EliteSize >= c.PopulationSize {
		return fmt.Errorf("%w: eliteSize must be in [1,%d) (got %d)", ErrInvalidConfig, c.PopulationSize, c.EliteSize)
	}
	if math.IsNaN(c.MutationRate) || c.MutationRate < 0 || c.MutationRate > 1 {
		return fmt.Errorf("%w: mutationRate must be in [0,1] (got %v)", ErrInvalidConfig, c.MutationRate)
	}
	if c.Generations < 0 {
		return fmt.Errorf("%w: generations must be >= 0 (got %d)", ErrInvalidConfig, c.Generations)
	}
	if c.ProgressEvery < 0 {
		return fmt.Errorf("%w: progressEvery must be >= 0 (got %d)", ErrInvalidConfig, c.ProgressEvery)
	}
	return nil
}

// GenerationStats summarizes one population.
type GenerationStats struct {
	Generation     int     `json:"generation"`
	BestDistance   float64 `json:"bestDistance"`
	MeanDistance   float64 `json:"meanDistance"`
	StdDevDistance float64 `json:"stdDevDistance"`
	BestFitness    float64 `json:"bestFitness"`
}

// Observer receives progress reports from Run.
type Observer interface {
	OnGeneration(GenerationStats)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(GenerationStats)

func (f ObserverFunc) OnGeneration(s GenerationStats) { f(s) }

// Result is the outcome of Run.
type Result struct {
	Best            *Tour
	Route           []Point
	InitialRoute    []Point
	InitialDistance float64
	FinalDistance   float64
	Generations     int
	History         []GenerationStats
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand injects the random source, overriding Config.Seed.
func WithRand(rng *rand.Rand) Option { return func(e *Engine) { e.rng = rng } }

// WithObserver registers a progress observer.
func WithObserver(o Observer) Option { return func(e *Engine) { e.observer = o } }

// WithInvariantChecks validates every tour produced by a generation and panics
// on a malformed one.
func WithInvariantChecks(on bool) Option { return func(e *Engine) { e.check = on } }

// Engine runs the genetic algorithm over one distance matrix.
// An Engine must not be used by more than one goroutine at a time.
type Engine struct {
	oracle   *Oracle
	cfg      Config
	rng      *rand.Rand
	observer Observer
	check    bool
}

// NewEngine validates cfg and returns an Engine over o.
func NewEngine(o *Oracle, cfg Config, opts ...Option) (*Engine, error) {
	if o == nil {
		return nil, fmt.Errorf("%w: nil oracle", ErrTooFewPoints)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{oracle: o, cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		e.rng = rand.New(rand.NewSource(seed))
	}
	return e, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// Advance produces the next generation from pop.
func (e *Engine) Advance(pop Population) (Population, error) {
	rt, err := Rank(pop, e.cfg.Parallelism)
	if err != nil {
		return nil, err
	}
	idx := SelectElite(rt, e.cfg.EliteSize, e.rng)
	pool := MatingPool(pop, idx)
	children := BreedPopulation(pool, e.cfg.EliteSize, e.rng)
	skip := e.cfg.EliteSize
	if e.cfg.MutateElites {
		skip = 0
	}
	next := MutatePopulation(children, e.cfg.MutationRate, skip, e.rng)
	if e.check {
		for _, t := range next {
			mustValid(t)
		}
	}
	return next, nil
}

// Run evolves a random initial population for exactly Config.Generations
// generations and returns the best tour of the last one. The context is
// checked between generations.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	pop, err := InitialPopulation(e.oracle, e.cfg.PopulationSize, e.rng)
	if err != nil {
		return Result{}, err
	}
	if e.check {
		for _, t := range pop {
			mustValid(t)
		}
	}
	var res Result
	first, err := e.observe(pop, 0, &res)
	if err != nil {
		return Result{}, err
	}
	res.InitialDistance = first.BestDistance
	if res.InitialRoute, err = e.best(pop); err != nil {
		return Result{}, err
	}

	for g := 1; g <= e.cfg.Generations; g++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if pop, err = e.Advance(pop); err != nil {
			return Result{}, fmt.Errorf("generation %d: %w", g, err)
		}
		res.Generations = g
		if g == e.cfg.Generations || (e.cfg.ProgressEvery > 0 && g%e.cfg.ProgressEvery == 0) {
			if _, err := e.observe(pop, g, &res); err != nil {
				return Result{}, err
			}
		}
	}

	rt, err := Rank(pop, e.cfg.Parallelism)
	if err != nil {
		return Result{}, err
	}
	best := pop[rt[0].Index]
	res.Best = best
	res.Route = best.Stops()
	res.FinalDistance, _ = best.Length()
	return res, nil
}

// best returns the stops of the fittest tour in pop.
func (e *Engine) best(pop Population) ([]Point, error) {
	rt, err := Rank(pop, e.cfg.Parallelism)
	if err != nil {
		return nil, err
	}
	return pop[rt[0].Index].Stops(), nil
}

func (e *Engine) observe(pop Population, gen int, res *Result) (GenerationStats, error) {
	s, err := Stats(pop, gen, e.cfg.Parallelism)
	if err != nil {
		return GenerationStats{}, err
	}
	res.History = append(res.History, s)
	if e.observer != nil {
		e.observer.OnGeneration(s)
	}
	return s, nil
}

// Stats ranks pop and summarizes its distances.
func Stats(pop Population, gen, parallelism int) (GenerationStats, error) {
	rt, err := Rank(pop, parallelism)
	if err != nil {
		return GenerationStats{}, err
	}
	d, err := pop.Distances()
	if err != nil {
		return GenerationStats{}, err
	}
	mean, std := stat.MeanStdDev(d, nil)
	if len(d) < 2 {
		std = 0
	}
	best, _ := pop[rt[0].Index].Length()
	return GenerationStats{
		Generation:     gen,
		BestDistance:   best,
		MeanDistance:   mean,
		StdDevDistance: std,
		BestFitness:    rt[0].Fitness,
	}, nil
}
