package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) (*Queue, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client, "test-queue"), mr
}

func TestJobID_FormatsDoubleUnderscoreSeparated(t *testing.T) {
	id := JobID("acme", "gitlab", "123", "45", "abc123", "")
	assert.Equal(t, "acme__gitlab__123__45__abc123", id)

	withRun := JobID("acme", "gitlab", "123", "45", "abc123", "run-1")
	assert.Equal(t, "acme__gitlab__123__45__abc123__run-1", withRun)
}

func TestEnqueueAndPop_FIFOOrder(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "job-1", `{"n":1}`, EnqueueOptions{}))
	require.NoError(t, q.Enqueue(ctx, "job-2", `{"n":2}`, EnqueueOptions{}))

	first, err := q.Pop(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "job-1", first.ID)
	assert.Equal(t, 1, first.Attempts)

	second, err := q.Pop(ctx)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "job-2", second.ID)
}

func TestPop_EmptyQueueReturnsNilNoError(t *testing.T) {
	q, _ := newTestQueue(t)
	job, err := q.Pop(context.Background())
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestGetJob_AbsentReturnsNilNoError(t *testing.T) {
	q, _ := newTestQueue(t)
	job, err := q.GetJob(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestAck_RemovesOnCompleteWhenRequested(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "job-1", "{}", EnqueueOptions{RemoveOnComplete: true}))
	_, err := q.Pop(ctx)
	require.NoError(t, err)

	require.NoError(t, q.Ack(ctx, "job-1"))

	job, err := q.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestAck_KeepsCompletedStateWhenNotRemoving(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "job-1", "{}", EnqueueOptions{}))
	_, err := q.Pop(ctx)
	require.NoError(t, err)
	require.NoError(t, q.Ack(ctx, "job-1"))

	job, err := q.GetJob(ctx, "job-1")
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, StateCompleted, job.State)
}

func TestFail_RetriesUntilAttemptsExhaustedThenFails(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "job-1", "{}", EnqueueOptions{Attempts: 2, BackoffDelay: time.Millisecond}))

	_, err := q.Pop(ctx) // attempt 1
	require.NoError(t, err)
	require.NoError(t, q.Fail(ctx, "job-1", errors.New("boom")))

	job, err := q.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, StateDelayed, job.State)

	n, err := q.PromoteDelayed(ctx)
	require.NoError(t, err)

	// miniredis's clock doesn't advance automatically; force the delayed
	// entry to be "ready" by waiting past the 1ms backoff.
	time.Sleep(5 * time.Millisecond)
	n, err = q.PromoteDelayed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = q.Pop(ctx) // attempt 2
	require.NoError(t, err)
	require.NoError(t, q.Fail(ctx, "job-1", errors.New("boom again")))

	job, err = q.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, StateFailed, job.State)
	assert.Equal(t, "boom again", job.LastError)
}

func TestEnqueue_SameJobIDOverwritesAndResetsToWaiting(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "job-1", "{}", EnqueueOptions{}))
	_, err := q.Pop(ctx)
	require.NoError(t, err)
	require.NoError(t, q.Fail(ctx, "job-1", errors.New("transient")))

	require.NoError(t, q.Enqueue(ctx, "job-1", `{"retry":true}`, EnqueueOptions{}))

	job, err := q.GetJob(ctx, "job-1")
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, StateWaiting, job.State)
	assert.Equal(t, `{"retry":true}`, job.Payload)
}

func TestSweepStalled_RedeliversWithinStalledBudget(t *testing.T) {
	q, _ := newTestQueue(t)
	q.lockDuration = 10 * time.Millisecond
	q.maxStalledCount = 1
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "job-1", "{}", EnqueueOptions{Attempts: 5}))
	_, err := q.Pop(ctx)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	n, err := q.SweepStalled(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	job, err := q.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, StateWaiting, job.State)
	assert.Equal(t, 1, job.StalledCount)
}

func TestSweepStalled_FailsAfterStalledBudgetExceeded(t *testing.T) {
	q, _ := newTestQueue(t)
	q.lockDuration = 10 * time.Millisecond
	q.maxStalledCount = 0
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "job-1", "{}", EnqueueOptions{Attempts: 5}))
	_, err := q.Pop(ctx)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	n, err := q.SweepStalled(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	job, err := q.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, StateFailed, job.State)
}
