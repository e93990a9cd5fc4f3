//go:build postgres_integration

package store

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"

	"colroute/internal/ga"
	"colroute/internal/model"
)

func TestPostgresRunLifecycle(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}
	ctx := context.Background()
	p, err := NewPostgres(dsn)
	if err != nil {
		t.Fatalf("NewPostgres: %v", err)
	}
	defer func() { _ = p.Close() }()
	if err := p.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	cfg := ga.Config{PopulationSize: 10, EliteSize: 2, MutationRate: 0.01, Generations: 5}
	r, err := p.CreateRun(ctx, model.RunInput{TenantID: "t_it", Points: 4, Config: cfg})
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := p.StartRun(ctx, r.ID); err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if err := p.AppendSnapshot(ctx, r.ID, model.Snapshot{Generation: 0, BestDistance: 5, MeanDistance: 6, BestFitness: 0.2}); err != nil {
		t.Fatalf("AppendSnapshot: %v", err)
	}
	if err := p.CompleteRun(ctx, r.ID, model.RunResult{Route: []int{0, 1, 2, 3, 0}, InitialDistance: 5, FinalDistance: 4}); err != nil {
		t.Fatalf("CompleteRun: %v", err)
	}
	got, err := p.GetRun(ctx, "t_it", r.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Status != model.StatusCompleted || got.Result == nil || got.Result.FinalDistance != 4 || got.Config != cfg {
		t.Fatalf("unexpected run: %+v", got)
	}
	snaps, err := p.ListSnapshots(ctx, "t_it", r.ID)
	if err != nil || len(snaps) != 1 {
		t.Fatalf("ListSnapshots: %v %+v", err, snaps)
	}
	if _, err := p.GetRun(ctx, "other", r.ID); err != ErrNotFound {
		t.Fatalf("cross-tenant GetRun: want ErrNotFound, got %v", err)
	}
}

func TestPostgresListRunsInCreationOrder(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}
	ctx := context.Background()
	p, err := NewPostgres(dsn)
	if err != nil {
		t.Fatalf("NewPostgres: %v", err)
	}
	defer func() { _ = p.Close() }()
	if err := p.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	tenant := "t_page_" + uuid.New().String()
	cfg := ga.Config{PopulationSize: 10, EliteSize: 2, MutationRate: 0.01, Generations: 5}
	var want []string
	for i := 0; i < 5; i++ {
		r, err := p.CreateRun(ctx, model.RunInput{TenantID: tenant, Points: 4, Config: cfg})
		if err != nil {
			t.Fatalf("CreateRun: %v", err)
		}
		want = append(want, r.ID)
	}
	var got []string
	cursor := ""
	for {
		page, next, err := p.ListRuns(ctx, tenant, "", cursor, 2)
		if err != nil {
			t.Fatalf("ListRuns: %v", err)
		}
		for _, r := range page {
			got = append(got, r.ID)
		}
		if next == "" {
			break
		}
		cursor = next
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("paged ids %v, want creation order %v", got, want)
	}
}
