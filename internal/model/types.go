package model

import (
	"time"

	"colroute/internal/ga"
)

// Run statuses.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// GAParams is the optional per-request override of the GA defaults. Nil
// fields keep the configured default.
type GAParams struct {
	PopulationSize *int     `json:"populationSize,omitempty"`
	EliteSize      *int     `json:"eliteSize,omitempty"`
	MutationRate   *float64 `json:"mutationRate,omitempty"`
	Generations    *int     `json:"generations,omitempty"`
	Seed           *int64   `json:"seed,omitempty"`
	MutateElites   *bool    `json:"mutateElites,omitempty"`
	ProgressEvery  *int     `json:"progressEvery,omitempty"`
}

// Apply overlays p onto base.
func (p *GAParams) Apply(base ga.Config) ga.Config {
	if p == nil {
		return base
	}
	if p.PopulationSize != nil {
		base.PopulationSize = *p.PopulationSize
	}
	if p.EliteSize != nil {
		base.EliteSize = *p.EliteSize
	}
	if p.MutationRate != nil {
		base.MutationRate = *p.MutationRate
	}
	if p.Generations != nil {
		base.Generations = *p.Generations
	}
	if p.Seed != nil {
		base.Seed = *p.Seed
	}
	if p.MutateElites != nil {
		base.MutateElites = *p.MutateElites
	}
	if p.ProgressEvery != nil {
		base.ProgressEvery = *p.ProgressEvery
	}
	return base
}

// RunRequest is the body of POST /v1/runs.
type RunRequest struct {
	TenantID string      `json:"tenantId,omitempty"`
	Label    string      `json:"label,omitempty"`
	Matrix   [][]float64 `json:"matrix"`
	Config   *GAParams   `json:"config,omitempty"`
	Async    bool        `json:"async,omitempty"`
}

// RunInput is what the store records when a run is created.
type RunInput struct {
	TenantID string
	Label    string
	Points   int
	Config   ga.Config
}

// RunResult is the outcome of a completed run.
type RunResult struct {
	Route           []int   `json:"route"`
	InitialDistance float64 `json:"initialDistance"`
	FinalDistance   float64 `json:"finalDistance"`
	Generations     int     `json:"generations"`
	DurationMs      int64   `json:"durationMs"`
}

// Run is one optimization job.
type Run struct {
	ID          string     `json:"id"`
	TenantID    string     `json:"tenantId"`
	Label       string     `json:"label,omitempty"`
	Status      string     `json:"status"`
	Points      int        `json:"points"`
	Config      ga.Config  `json:"config"`
	Result      *RunResult `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Snapshot is the population summary recorded at one generation.
type Snapshot = ga.GenerationStats

// RouteFromPoints converts a GA route to plain ints for JSON and storage.
func RouteFromPoints(pts []ga.Point) []int {
	out := make([]int, len(pts))
	for i, p := range pts {
		out[i] = int(p)
	}
	return out
}
