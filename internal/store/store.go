package store

import (
	"context"
	"errors"

	"colroute/internal/model"
)

// Store is the persistence interface used by the API server.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, in model.RunInput) (model.Run, error)
	StartRun(ctx context.Context, id string) error
	CompleteRun(ctx context.Context, id string, res model.RunResult) error
	FailRun(ctx context.Context, id string, msg string) error
	GetRun(ctx context.Context, tenantID, id string) (model.Run, error)
	ListRuns(ctx context.Context, tenantID, status, cursor string, limit int) ([]model.Run, string, error)

	// Generation snapshots
	AppendSnapshot(ctx context.Context, id string, snap model.Snapshot) error
	ListSnapshots(ctx context.Context, tenantID, id string) ([]model.Snapshot, error)

	Ping(ctx context.Context) error
}

var ErrNotFound = errors.New("not found")

func clampLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 100
	}
	return limit
}
