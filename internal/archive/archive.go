// Package archive keeps a history of scoring and evaluation runs.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bdahlka1/cec.ai-demo/internal/entity"
)

// Run kinds.
const (
	KindScore      = "score"
	KindEvaluation = "evaluation"
)

// Run is one archived run. Total is the score total for score runs and the mean absolute
// total error for evaluation runs.
type Run struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	Subject   string    `json:"subject"`
	Total     float64   `json:"total"`
	Decision  string    `json:"decision,omitempty"`
	Projects  int       `json:"projects,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Payload   []byte    `json:"-"`
}

type Store interface {
	SaveScoreReport(ctx context.Context, report entity.ScoreReport) error
	SaveEvaluation(ctx context.Context, manifest string, summary entity.EvaluationSummary) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	GetRun(ctx context.Context, id uuid.UUID) (Run, error)
	Close() error
}

// Open picks a backend from the DSN: postgres:// or postgresql:// URLs use PostgreSQL,
// anything else is a SQLite file path (an optional sqlite:// prefix is stripped).
func Open(ctx context.Context, dsn string, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch {
	case dsn == "":
		return nil, fmt.Errorf("archive dsn is empty")
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return OpenPostgres(ctx, PostgresConfig{DSN: dsn}, logger)
	default:
		return OpenSQLite(ctx, strings.TrimPrefix(dsn, "sqlite://"), logger)
	}
}

func scoreRun(report entity.ScoreReport) (Run, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return Run{}, fmt.Errorf("encode report: %w", err)
	}
	id := report.RunID
	if id == uuid.Nil {
		id = uuid.New()
	}
	created := report.ScoredAt
	if created.IsZero() {
		created = time.Now()
	}
	return Run{
		ID:        id,
		Kind:      KindScore,
		Subject:   report.Document,
		Total:     report.Total,
		Decision:  string(report.Decision),
		CreatedAt: created.UTC(),
		Payload:   payload,
	}, nil
}

func evaluationRun(manifest string, s entity.EvaluationSummary) (Run, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return Run{}, fmt.Errorf("encode summary: %w", err)
	}
	id := s.RunID
	if id == uuid.Nil {
		id = uuid.New()
	}
	created := s.FinishedAt
	if created.IsZero() {
		created = time.Now()
	}
	return Run{
		ID:        id,
		Kind:      KindEvaluation,
		Subject:   manifest,
		Total:     s.MeanAbsTotalError,
		Projects:  s.ProjectCount,
		CreatedAt: created.UTC(),
		Payload:   payload,
	}, nil
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return 20
	}
	return limit
}
