package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"colroute/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu    sync.Mutex
	runs  map[string]model.Run        // id -> run
	byTen map[string][]string         // tenant -> run ids, oldest first
	snaps map[string][]model.Snapshot // run id -> snapshots
}

func NewMemory() *Memory {
	return &Memory{
		runs:  map[string]model.Run{},
		byTen: map[string][]string{},
		snaps: map[string][]model.Snapshot{},
	}
}

func (m *Memory) CreateRun(ctx context.Context, in model.RunInput) (model.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := model.Run{
		ID:        uuid.New().String(),
		TenantID:  in.TenantID,
		Label:     in.Label,
		Status:    model.StatusPending,
		Points:    in.Points,
		Config:    in.Config,
		CreatedAt: time.Now().UTC(),
	}
	m.runs[r.ID] = r
	m.byTen[in.TenantID] = append(m.byTen[in.TenantID], r.ID)
	return r, nil
}

func (m *Memory) update(id string, fn func(*model.Run)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return ErrNotFound
	}
	fn(&r)
	m.runs[id] = r
	return nil
}

func (m *Memory) StartRun(ctx context.Context, id string) error {
	return m.update(id, func(r *model.Run) {
		now := time.Now().UTC()
		r.Status = model.StatusRunning
		r.StartedAt = &now
	})
}

func (m *Memory) CompleteRun(ctx context.Context, id string, res model.RunResult) error {
	return m.update(id, func(r *model.Run) {
		now := time.Now().UTC()
		r.Status = model.StatusCompleted
		r.Result = &res
		r.CompletedAt = &now
	})
}

func (m *Memory) FailRun(ctx context.Context, id string, msg string) error {
	return m.update(id, func(r *model.Run) {
		now := time.Now().UTC()
		r.Status = model.StatusFailed
		r.Error = msg
		r.CompletedAt = &now
	})
}

func (m *Memory) GetRun(ctx context.Context, tenantID, id string) (model.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok || r.TenantID != tenantID {
		return model.Run{}, ErrNotFound
	}
	return r, nil
}

func (m *Memory) ListRuns(ctx context.Context, tenantID, status, cursor string, limit int) ([]model.Run, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	limit = clampLimit(limit)
	ids := m.byTen[tenantID]
	start := 0
	if cursor != "" {
		for i, id := range ids {
			if id == cursor {
				start = i + 1
				break
			}
		}
	}
	out := []model.Run{}
	var next string
	for i := start; i < len(ids) && len(out) < limit; i++ {
		r := m.runs[ids[i]]
		if status == "" || r.Status == status {
			out = append(out, r)
		}
		next = ids[i]
	}
	if len(out) < limit {
		next = ""
	}
	return out, next, nil
}

func (m *Memory) AppendSnapshot(ctx context.Context, id string, snap model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[id]; !ok {
		return ErrNotFound
	}
	m.snaps[id] = append(m.snaps[id], snap)
	return nil
}

func (m *Memory) ListSnapshots(ctx context.Context, tenantID, id string) ([]model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok || r.TenantID != tenantID {
		return nil, ErrNotFound
	}
	return append([]model.Snapshot{}, m.snaps[id]...), nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }
