package async

import (
	"context"
	"errors"
	"time"
)

// ErrQueueClosed is returned when a job is submitted after Shutdown.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one unit of work. Index is the job's position in submission order, so callers can
// place results deterministically regardless of which worker finishes first.
type Job struct {
	Index       int
	Name        string
	SubmittedAt time.Time
}

// Handler processes one job. The context carries the per-job timeout.
type Handler func(ctx context.Context, job Job) error

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
