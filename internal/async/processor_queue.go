package async

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ProcessorQueue runs a Handler over queued jobs with a fixed set of workers.
type ProcessorQueue struct {
	handler Handler
	logger  *slog.Logger
	workers int
	timeout time.Duration
	base    context.Context

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// NewProcessorQueue starts the workers. Job contexts derive from ctx, so cancelling it
// aborts in-flight and queued work.
func NewProcessorQueue(ctx context.Context, handler Handler, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		handler: handler,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		base:    ctx,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := context.WithTimeout(q.base, q.timeout)
					start := time.Now()
					err := q.handler(ctx, job)
					cancel()

					if err != nil {
						q.logger.Warn("job failed", "worker_id", workerID, "job", job.Name, "error", err)
					} else {
						q.logger.Debug("job done", "worker_id", workerID, "job", job.Name,
							"elapsed_ms", time.Since(start).Milliseconds(),
							"waited_ms", start.Sub(job.SubmittedAt).Milliseconds())
					}
				}

				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "job", job.Name)
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
	default:
		q.logger.Debug("queue full, applying backpressure", "job", job.Name)
		select {
		case q.ch <- job:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Shutdown stops accepting jobs and waits for queued ones to drain or ctx to end.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Debug("queue drained, shutdown complete")
	}
}

// RunAll processes n jobs named by name(i) and returns once every job has finished. The
// handler receives each job's Index, so results can be stored by position.
func RunAll(ctx context.Context, n int, name func(int) string, handler Handler, logger *slog.Logger, opts ...Option) error {
	q := NewProcessorQueue(ctx, handler, logger, append([]Option{WithQueueSize(n)}, opts...)...)
	var enqueueErr error
	for i := 0; i < n; i++ {
		if err := q.Enqueue(ctx, Job{Index: i, Name: name(i)}); err != nil {
			enqueueErr = err
			break
		}
	}
	q.Shutdown(context.Background())
	if enqueueErr != nil {
		return enqueueErr
	}
	return ctx.Err()
}
