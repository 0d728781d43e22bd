package async

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAll_PlacesResultsByIndex(t *testing.T) {
	const n = 25
	out := make([]int, n)
	var running, peak int32

	handler := func(ctx context.Context, job Job) error {
		cur := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if cur <= p || atomic.CompareAndSwapInt32(&peak, p, cur) {
				break
			}
		}
		time.Sleep(time.Millisecond * time.Duration(n-job.Index))
		out[job.Index] = job.Index * job.Index
		atomic.AddInt32(&running, -1)
		return nil
	}

	err := RunAll(context.Background(), n, strconv.Itoa, handler, nil, WithWorkers(3))
	require.NoError(t, err)

	for i := range out {
		assert.Equal(t, i*i, out[i])
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestRunAll_HandlerErrorsDoNotStopQueue(t *testing.T) {
	var done int32
	handler := func(ctx context.Context, job Job) error {
		atomic.AddInt32(&done, 1)
		if job.Index%2 == 0 {
			return errors.New("boom")
		}
		return nil
	}

	require.NoError(t, RunAll(context.Background(), 10, strconv.Itoa, handler, nil, WithWorkers(2)))
	assert.Equal(t, int32(10), atomic.LoadInt32(&done))
}

func TestProcessorQueue_TimeoutReachesHandler(t *testing.T) {
	var deadlineSeen atomic.Bool
	handler := func(ctx context.Context, job Job) error {
		<-ctx.Done()
		deadlineSeen.Store(errors.Is(ctx.Err(), context.DeadlineExceeded))
		return ctx.Err()
	}

	require.NoError(t, RunAll(context.Background(), 1, strconv.Itoa, handler, nil, WithProcessTimeout(10*time.Millisecond)))
	assert.True(t, deadlineSeen.Load())
}

func TestProcessorQueue_EnqueueAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(context.Background(), func(context.Context, Job) error { return nil }, nil, WithWorkers(1))
	q.Shutdown(context.Background())

	err := q.Enqueue(context.Background(), Job{Name: "late"})
	assert.ErrorIs(t, err, ErrQueueClosed)
	q.Shutdown(context.Background())
}
