package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bdahlka1/cec.ai-demo/internal/common"
	"github.com/bdahlka1/cec.ai-demo/internal/entity"
)

type PostgresConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	subject    TEXT NOT NULL,
	total      DOUBLE PRECISION NOT NULL,
	decision   TEXT NOT NULL DEFAULT '',
	projects   INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	payload    JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);

CREATE TABLE IF NOT EXISTS rule_results (
	run_id  TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	rule_id INTEGER NOT NULL,
	points  DOUBLE PRECISION NOT NULL,
	page    INTEGER NOT NULL,
	comment TEXT NOT NULL,
	PRIMARY KEY (run_id, rule_id)
);

CREATE TABLE IF NOT EXISTS project_results (
	run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	project     TEXT NOT NULL,
	human_total DOUBLE PRECISION NOT NULL,
	model_total DOUBLE PRECISION NOT NULL,
	difference  DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, position)
);
`

// PostgresStore archives runs in PostgreSQL through a pgx pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres creates a pgx pool, checks it and ensures the schema exists.
func OpenPostgres(ctx context.Context, cfg PostgresConfig, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse archive dsn", "error", err)
		return nil, err
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "bidscore"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprint(cfg.StatementTimeout.Milliseconds())
	}

	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 10 * time.Second
	}
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to archive database", "error", err)
		return nil, err
	}
	if err := pool.Ping(dialCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping archive database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	logger.Info("archive.postgres.open", "host", pc.ConnConfig.Host, "database", pc.ConnConfig.Database)
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveScoreReport(ctx context.Context, report entity.ScoreReport) error {
	run, err := scoreRun(report)
	if err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := insertRunPostgres(ctx, tx, run); err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for _, r := range report.Results {
			batch.Queue(`INSERT INTO rule_results (run_id, rule_id, points, page, comment) VALUES ($1, $2, $3, $4, $5)`,
				run.ID.String(), r.RuleID, r.Points, r.Page, r.Comment)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert rule results: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) SaveEvaluation(ctx context.Context, manifest string, summary entity.EvaluationSummary) error {
	run, err := evaluationRun(manifest, summary)
	if err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := insertRunPostgres(ctx, tx, run); err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for i, p := range summary.Projects {
			batch.Queue(`INSERT INTO project_results (run_id, position, project, human_total, model_total, difference) VALUES ($1, $2, $3, $4, $5, $6)`,
				run.ID.String(), i, p.Project.Name, p.HumanTotal, p.ModelTotal, p.Difference)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert project results: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, kind, subject, total, decision, projects, created_at, payload::text
		   FROM runs ORDER BY created_at DESC, id LIMIT $1`, limitOrDefault(limit))
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRunPostgres(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *PostgresStore) GetRun(ctx context.Context, id uuid.UUID) (Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, kind, subject, total, decision, projects, created_at, payload::text FROM runs WHERE id = $1`, id.String())
	run, err := scanRunPostgres(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, common.ErrNotFound)
	}
	return run, err
}

func insertRunPostgres(ctx context.Context, tx pgx.Tx, run Run) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO runs (id, kind, subject, total, decision, projects, created_at, payload) VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb)`,
		run.ID.String(), run.Kind, run.Subject, run.Total, run.Decision, run.Projects, run.CreatedAt, string(run.Payload))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func scanRunPostgres(row pgx.Row) (Run, error) {
	var (
		run     Run
		id, pay string
	)
	if err := row.Scan(&id, &run.Kind, &run.Subject, &run.Total, &run.Decision, &run.Projects, &run.CreatedAt, &pay); err != nil {
		return Run{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Run{}, fmt.Errorf("run id %q: %w", id, err)
	}
	run.ID = parsed
	run.Payload = []byte(pay)
	return run, nil
}
