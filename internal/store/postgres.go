package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"colroute/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS ga_runs (
    id           uuid PRIMARY KEY,
    tenant_id    text NOT NULL,
    label        text,
    status       text NOT NULL,
    points       integer NOT NULL,
    config       jsonb NOT NULL,
    result       jsonb,
    error        text,
    created_at   timestamptz NOT NULL DEFAULT now(),
    started_at   timestamptz,
    completed_at timestamptz
);
CREATE INDEX IF NOT EXISTS ga_runs_tenant_status_idx ON ga_runs (tenant_id, status);
CREATE INDEX IF NOT EXISTS ga_runs_tenant_created_idx ON ga_runs (tenant_id, created_at, id);
CREATE TABLE IF NOT EXISTS ga_snapshots (
    run_id          uuid NOT NULL REFERENCES ga_runs(id) ON DELETE CASCADE,
    generation      integer NOT NULL,
    best_distance   double precision NOT NULL,
    mean_distance   double precision NOT NULL,
    stddev_distance double precision NOT NULL,
    best_fitness    double precision NOT NULL,
    PRIMARY KEY (run_id, generation)
);
`

type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

// Migrate creates the run tables if they do not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error { return p.db.Close() }

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

func (p *Postgres) CreateRun(ctx context.Context, in model.RunInput) (model.Run, error) {
	cfg, err := json.Marshal(in.Config)
	if err != nil {
		return model.Run{}, err
	}
	r := model.Run{
		ID:        uuid.New().String(),
		TenantID:  in.TenantID,
		Label:     in.Label,
		Status:    model.StatusPending,
		Points:    in.Points,
		Config:    in.Config,
		CreatedAt: time.Now().UTC(),
	}
	_, err = p.db.ExecContext(ctx, `INSERT INTO ga_runs (id, tenant_id, label, status, points, config, created_at) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		r.ID, r.TenantID, nullIfEmpty(r.Label), r.Status, r.Points, cfg, r.CreatedAt)
	if err != nil {
		return model.Run{}, err
	}
	return r, nil
}

func (p *Postgres) StartRun(ctx context.Context, id string) error {
	return p.exec1(ctx, `UPDATE ga_runs SET status=$2, started_at=now() WHERE id=$1`, id, model.StatusRunning)
}

func (p *Postgres) CompleteRun(ctx context.Context, id string, res model.RunResult) error {
	b, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return p.exec1(ctx, `UPDATE ga_runs SET status=$2, result=$3, completed_at=now() WHERE id=$1`, id, model.StatusCompleted, b)
}

func (p *Postgres) FailRun(ctx context.Context, id string, msg string) error {
	return p.exec1(ctx, `UPDATE ga_runs SET status=$2, error=$3, completed_at=now() WHERE id=$1`, id, model.StatusFailed, msg)
}

// exec1 runs an update keyed by run id and maps zero affected rows to ErrNotFound.
func (p *Postgres) exec1(ctx context.Context, q string, id string, args ...any) error {
	if !validID(id) {
		return ErrNotFound
	}
	res, err := p.db.ExecContext(ctx, q, append([]any{id}, args...)...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const runColumns = `id::text, tenant_id, label, status, points, config, result, error, created_at, started_at, completed_at`

type rowScanner interface{ Scan(dest ...any) error }

func scanRun(row rowScanner) (model.Run, error) {
	var (
		r                  model.Run
		label, errMsg      sql.NullString
		cfg, result        []byte
		started, completed sql.NullTime
	)
	if err := row.Scan(&r.ID, &r.TenantID, &label, &r.Status, &r.Points, &cfg, &result, &errMsg, &r.CreatedAt, &started, &completed); err != nil {
		return model.Run{}, err
	}
	r.Label = label.String
	r.Error = errMsg.String
	if err := json.Unmarshal(cfg, &r.Config); err != nil {
		return model.Run{}, fmt.Errorf("decode config of run %s: %w", r.ID, err)
	}
	if len(result) > 0 {
		var res model.RunResult
		if err := json.Unmarshal(result, &res); err != nil {
			return model.Run{}, fmt.Errorf("decode result of run %s: %w", r.ID, err)
		}
		r.Result = &res
	}
	if started.Valid {
		t := started.Time.UTC()
		r.StartedAt = &t
	}
	if completed.Valid {
		t := completed.Time.UTC()
		r.CompletedAt = &t
	}
	return r, nil
}

func (p *Postgres) GetRun(ctx context.Context, tenantID, id string) (model.Run, error) {
	if !validID(id) {
		return model.Run{}, ErrNotFound
	}
	row := p.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM ga_runs WHERE tenant_id=$1 AND id=$2`, tenantID, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Run{}, ErrNotFound
	}
	return r, err
}

func (p *Postgres) ListRuns(ctx context.Context, tenantID, status, cursor string, limit int) ([]model.Run, string, error) {
	limit = clampLimit(limit)
	if cursor != "" && !validID(cursor) {
		return nil, "", fmt.Errorf("invalid cursor %q", cursor)
	}
	q, args := listRunsQuery(tenantID, status, cursor, limit)
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()
	out := []model.Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, "", err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}
	var next string
	if len(out) == limit {
		next = out[len(out)-1].ID
	}
	return out, next, nil
}

// listRunsQuery pages runs oldest first. The cursor is the id of the last run
// of the previous page; its (created_at, id) is the keyset boundary.
func listRunsQuery(tenantID, status, cursor string, limit int) (string, []any) {
	q := `SELECT ` + runColumns + ` FROM ga_runs WHERE tenant_id=$1`
	args := []any{tenantID}
	if status != "" {
		args = append(args, status)
		q += fmt.Sprintf(" AND status=$%d", len(args))
	}
	if cursor != "" {
		args = append(args, cursor)
		q += fmt.Sprintf(" AND (created_at, id) > (SELECT created_at, id FROM ga_runs WHERE tenant_id=$1 AND id=$%d)", len(args))
	}
	args = append(args, limit)
	q += fmt.Sprintf(" ORDER BY created_at, id LIMIT $%d", len(args))
	return q, args
}

func (p *Postgres) AppendSnapshot(ctx context.Context, id string, s model.Snapshot) error {
	if !validID(id) {
		return ErrNotFound
	}
	_, err := p.db.ExecContext(ctx, `INSERT INTO ga_snapshots (run_id, generation, best_distance, mean_distance, stddev_distance, best_fitness) VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (run_id, generation) DO UPDATE SET best_distance=EXCLUDED.best_distance, mean_distance=EXCLUDED.mean_distance, stddev_distance=EXCLUDED.stddev_distance, best_fitness=EXCLUDED.best_fitness`,
		id, s.Generation, s.BestDistance, s.MeanDistance, s.StdDevDistance, s.BestFitness)
	return err
}

func (p *Postgres) ListSnapshots(ctx context.Context, tenantID, id string) ([]model.Snapshot, error) {
	if _, err := p.GetRun(ctx, tenantID, id); err != nil {
		return nil, err
	}
	rows, err := p.db.QueryContext(ctx, `SELECT generation, best_distance, mean_distance, stddev_distance, best_fitness FROM ga_snapshots WHERE run_id=$1 ORDER BY generation`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Snapshot{}
	for rows.Next() {
		var s model.Snapshot
		if err := rows.Scan(&s.Generation, &s.BestDistance, &s.MeanDistance, &s.StdDevDistance, &s.BestFitness); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
