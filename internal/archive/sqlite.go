package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/bdahlka1/cec.ai-demo/internal/common"
	"github.com/bdahlka1/cec.ai-demo/internal/entity"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	subject    TEXT NOT NULL,
	total      REAL NOT NULL,
	decision   TEXT NOT NULL DEFAULT '',
	projects   INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	payload    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);

CREATE TABLE IF NOT EXISTS rule_results (
	run_id  TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	rule_id INTEGER NOT NULL,
	points  REAL NOT NULL,
	page    INTEGER NOT NULL,
	comment TEXT NOT NULL,
	PRIMARY KEY (run_id, rule_id)
);

CREATE TABLE IF NOT EXISTS project_results (
	run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	project     TEXT NOT NULL,
	human_total REAL NOT NULL,
	model_total REAL NOT NULL,
	difference  REAL NOT NULL,
	PRIMARY KEY (run_id, position)
);
`

// sqliteTime is fixed width so created_at sorts as text.
const sqliteTime = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore archives runs in a local SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// writes are serialized by SQLite anyway
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	logger.Debug("archive.sqlite.open", "path", path)
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) SaveScoreReport(ctx context.Context, report entity.ScoreReport) error {
	run, err := scoreRun(report)
	if err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := insertRunSQLite(ctx, tx, run); err != nil {
			return err
		}
		for _, r := range report.Results {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO rule_results (run_id, rule_id, points, page, comment) VALUES (?, ?, ?, ?, ?)`,
				run.ID.String(), r.RuleID, r.Points, r.Page, r.Comment); err != nil {
				return fmt.Errorf("insert rule result: %w", err)
			}
		}
		s.logger.Debug("archive.score.saved", "run_id", run.ID, "rules", len(report.Results))
		return nil
	})
}

func (s *SQLiteStore) SaveEvaluation(ctx context.Context, manifest string, summary entity.EvaluationSummary) error {
	run, err := evaluationRun(manifest, summary)
	if err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := insertRunSQLite(ctx, tx, run); err != nil {
			return err
		}
		for i, p := range summary.Projects {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO project_results (run_id, position, project, human_total, model_total, difference) VALUES (?, ?, ?, ?, ?, ?)`,
				run.ID.String(), i, p.Project.Name, p.HumanTotal, p.ModelTotal, p.Difference); err != nil {
				return fmt.Errorf("insert project result: %w", err)
			}
		}
		s.logger.Debug("archive.evaluation.saved", "run_id", run.ID, "projects", len(summary.Projects))
		return nil
	})
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, subject, total, decision, projects, created_at, payload
		   FROM runs ORDER BY created_at DESC, id LIMIT ?`, limitOrDefault(limit))
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRunSQLite(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) GetRun(ctx context.Context, id uuid.UUID) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, subject, total, decision, projects, created_at, payload FROM runs WHERE id = ?`, id.String())
	run, err := scanRunSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, common.ErrNotFound)
	}
	return run, err
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertRunSQLite(ctx context.Context, tx *sql.Tx, run Run) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, kind, subject, total, decision, projects, created_at, payload) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.Kind, run.Subject, run.Total, run.Decision, run.Projects,
		run.CreatedAt.UTC().Format(sqliteTime), string(run.Payload))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRunSQLite(sc scanner) (Run, error) {
	var (
		run              Run
		id, created, pay string
	)
	if err := sc.Scan(&id, &run.Kind, &run.Subject, &run.Total, &run.Decision, &run.Projects, &created, &pay); err != nil {
		return Run{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Run{}, fmt.Errorf("run id %q: %w", id, err)
	}
	run.ID = parsed
	if run.CreatedAt, err = time.Parse(sqliteTime, created); err != nil {
		return Run{}, fmt.Errorf("run %s created_at: %w", id, err)
	}
	run.Payload = []byte(pay)
	return run, nil
}
