// Package ga finds short closed tours over a symmetric distance matrix with a
// genetic algorithm.
//
// A tour starts and ends at the depot (point 0) and visits every other point
// once. Each generation is ranked by fitness (1/length) and the best
// EliteSize tours survive unchanged. The remaining slots are bred by ordered
// crossover from a roulette-selected mating pool and then swap-mutated.
// Tours are immutable, so a cached length is never stale.
//
// All randomness comes from one *rand.Rand owned by the Engine; a fixed
// Config.Seed makes a run reproducible.
package ga
