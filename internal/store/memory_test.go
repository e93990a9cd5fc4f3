package store

import (
	"context"
	"errors"
	"testing"

	"colroute/internal/ga"
	"colroute/internal/model"
)

func TestMemoryRunLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	cfg := ga.Config{PopulationSize: 10, EliteSize: 2, MutationRate: 0.01, Generations: 5}
	r, err := m.CreateRun(ctx, model.RunInput{TenantID: "t1", Label: "north", Points: 4, Config: cfg})
	if err != nil || r.ID == "" || r.Status != model.StatusPending {
		t.Fatalf("CreateRun: %v %+v", err, r)
	}
	if err := m.StartRun(ctx, r.ID); err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if err := m.AppendSnapshot(ctx, r.ID, model.Snapshot{Generation: 0, BestDistance: 10}); err != nil {
		t.Fatalf("AppendSnapshot: %v", err)
	}
	if err := m.CompleteRun(ctx, r.ID, model.RunResult{Route: []int{0, 2, 1, 3, 0}, FinalDistance: 8}); err != nil {
		t.Fatalf("CompleteRun: %v", err)
	}
	got, err := m.GetRun(ctx, "t1", r.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Status != model.StatusCompleted || got.StartedAt == nil || got.CompletedAt == nil || got.Result.FinalDistance != 8 {
		t.Fatalf("unexpected run: %+v", got)
	}
	if _, err := m.GetRun(ctx, "t2", r.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-tenant read should be not found, got %v", err)
	}
	snaps, err := m.ListSnapshots(ctx, "t1", r.ID)
	if err != nil || len(snaps) != 1 || snaps[0].BestDistance != 10 {
		t.Fatalf("ListSnapshots: %v %+v", err, snaps)
	}
	if err := m.FailRun(ctx, "missing", "boom"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("FailRun on unknown id: %v", err)
	}
}

func TestMemoryListRunsPaginates(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	var ids []string
	for i := 0; i < 5; i++ {
		r, _ := m.CreateRun(ctx, model.RunInput{TenantID: "t1", Points: 3})
		ids = append(ids, r.ID)
	}
	_ = m.FailRun(ctx, ids[1], "x")

	page, next, err := m.ListRuns(ctx, "t1", "", "", 2)
	if err != nil || len(page) != 2 || next != ids[1] {
		t.Fatalf("page 1: %v len=%d next=%q", err, len(page), next)
	}
	page, next, _ = m.ListRuns(ctx, "t1", "", next, 2)
	if len(page) != 2 || page[0].ID != ids[2] || next != ids[3] {
		t.Fatalf("page 2: len=%d next=%q", len(page), next)
	}
	page, next, _ = m.ListRuns(ctx, "t1", "", next, 2)
	if len(page) != 1 || next != "" {
		t.Fatalf("page 3: len=%d next=%q", len(page), next)
	}
	failed, _, _ := m.ListRuns(ctx, "t1", model.StatusFailed, "", 10)
	if len(failed) != 1 || failed[0].ID != ids[1] {
		t.Fatalf("status filter: %+v", failed)
	}
}
