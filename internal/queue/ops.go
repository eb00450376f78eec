package queue

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrJobNotFound is returned by operations that require an existing job.
var ErrJobNotFound = errors.New("queue: job not found")

// Enqueue adds payload under jobId to the waiting set. If a job with the
// same jobId already exists, Enqueue overwrites its payload and options and
// resets it to waiting — callers (C8 intake) decide when re-enqueuing the
// same id is the right call (spec §4.7's dedup decision); the queue itself
// is simply idempotent on jobId.
func (q *Queue) Enqueue(ctx context.Context, jobID, payload string, opts EnqueueOptions) error {
	opts = opts.withDefaults()

	seq, err := q.client.Incr(ctx, q.seqKey()).Result()
	if err != nil {
		return err
	}

	pipe := q.client.TxPipeline()
	pipe.HSet(ctx, q.jobKey(jobID), map[string]interface{}{
		"payload":            payload,
		"state":              string(StateWaiting),
		"attempts":           0,
		"max_attempts":       opts.Attempts,
		"stalled_count":      0,
		"backoff_delay_ms":   opts.BackoffDelay.Milliseconds(),
		"remove_on_complete": boolToInt(opts.RemoveOnComplete),
		"remove_on_fail":     boolToInt(opts.RemoveOnFail),
		"created_at":         time.Now().Unix(),
	})
	pipe.ZRem(ctx, q.delayedKey(), jobID)
	pipe.ZRem(ctx, q.activeKey(), jobID)
	pipe.ZAdd(ctx, q.waitingKey(), redis.Z{Score: float64(seq), Member: jobID})

	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	q.logger.Info("job enqueued", zap.String("job_id", jobID))
	return nil
}

// GetJob returns the job's current state, or (nil, nil) if it does not
// exist (has never been enqueued, or was removed on completion/failure per
// RemoveOnComplete/RemoveOnFail).
func (q *Queue) GetJob(ctx context.Context, jobID string) (*Job, error) {
	fields, err := q.client.HGetAll(ctx, q.jobKey(jobID)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return jobFromFields(jobID, fields), nil
}

// Pop leases the next waiting job, if any, moving it into the active set
// with a lease expiring lockDuration from now. Returns (nil, nil) if the
// waiting set is empty.
func (q *Queue) Pop(ctx context.Context) (*Job, error) {
	results, err := q.client.ZPopMin(ctx, q.waitingKey(), 1).Result()
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	jobID, ok := results[0].Member.(string)
	if !ok {
		return nil, errors.New("queue: unexpected member type in waiting set")
	}

	leaseExpiresAt := time.Now().Add(q.lockDuration)
	pipe := q.client.TxPipeline()
	pipe.ZAdd(ctx, q.activeKey(), redis.Z{Score: float64(leaseExpiresAt.UnixMilli()), Member: jobID})
	pipe.HSet(ctx, q.jobKey(jobID), "state", string(StateActive))
	pipe.HIncrBy(ctx, q.jobKey(jobID), "attempts", 1)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	job, err := q.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}

	q.logger.Info("job leased", zap.String("job_id", jobID), zap.Int("attempt", job.Attempts))
	return job, nil
}

// Ack marks a leased job complete, removing its lease. If RemoveOnComplete
// was set, the job's hash is deleted entirely; otherwise it's kept with
// state=completed for later inspection (e.g. the control API's detail view).
func (q *Queue) Ack(ctx context.Context, jobID string) error {
	job, err := q.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return ErrJobNotFound
	}

	pipe := q.client.TxPipeline()
	pipe.ZRem(ctx, q.activeKey(), jobID)
	if job.RemoveOnComplete {
		pipe.Del(ctx, q.jobKey(jobID))
	} else {
		pipe.HSet(ctx, q.jobKey(jobID), "state", string(StateCompleted))
	}
	_, err = pipe.Exec(ctx)
	if err != nil {
		return err
	}

	q.logger.Info("job acked", zap.String("job_id", jobID))
	return nil
}

// Fail records a leased job's failure. If attempts remain, the job is
// scheduled for delayed retry with exponential backoff
// (backoffDelay * 2^(attempts-1)); otherwise it's marked permanently
// failed (and removed if RemoveOnFail was set).
func (q *Queue) Fail(ctx context.Context, jobID string, cause error) error {
	job, err := q.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return ErrJobNotFound
	}

	errMsg := ""
	if cause != nil {
		errMsg = cause.Error()
	}

	pipe := q.client.TxPipeline()
	pipe.ZRem(ctx, q.activeKey(), jobID)

	if job.Attempts < job.MaxAttempts {
		delay := backoffFor(job.BackoffDelay, job.Attempts)
		readyAt := time.Now().Add(delay)
		pipe.ZAdd(ctx, q.delayedKey(), redis.Z{Score: float64(readyAt.UnixMilli()), Member: jobID})
		pipe.HSet(ctx, q.jobKey(jobID), map[string]interface{}{
			"state":      string(StateDelayed),
			"last_error": errMsg,
		})
	} else if job.RemoveOnFail {
		pipe.Del(ctx, q.jobKey(jobID))
	} else {
		pipe.HSet(ctx, q.jobKey(jobID), map[string]interface{}{
			"state":      string(StateFailed),
			"last_error": errMsg,
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	q.logger.Warn("job failed",
		zap.String("job_id", jobID),
		zap.Int("attempt", job.Attempts),
		zap.Int("max_attempts", job.MaxAttempts),
		zap.Error(cause),
	)
	return nil
}

// PromoteDelayed moves every delayed job whose retry time has arrived back
// into the waiting set, returning the number promoted. Callers run this
// periodically alongside the stalled-lease sweep.
func (q *Queue) PromoteDelayed(ctx context.Context) (int, error) {
	now := float64(time.Now().UnixMilli())
	ready, err := q.client.ZRangeByScore(ctx, q.delayedKey(), &redis.ZRangeBy{Min: "-inf", Max: strconv.FormatFloat(now, 'f', 0, 64)}).Result()
	if err != nil {
		return 0, err
	}

	for _, jobID := range ready {
		seq, err := q.client.Incr(ctx, q.seqKey()).Result()
		if err != nil {
			return 0, err
		}
		pipe := q.client.TxPipeline()
		pipe.ZRem(ctx, q.delayedKey(), jobID)
		pipe.ZAdd(ctx, q.waitingKey(), redis.Z{Score: float64(seq), Member: jobID})
		pipe.HSet(ctx, q.jobKey(jobID), "state", string(StateWaiting))
		if _, err := pipe.Exec(ctx); err != nil {
			return 0, err
		}
	}

	if len(ready) > 0 {
		q.logger.Info("promoted delayed jobs to waiting", zap.Int("count", len(ready)))
	}
	return len(ready), nil
}

func backoffFor(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	multiplier := int64(1) << uint(attempt-1)
	return base * time.Duration(multiplier)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func jobFromFields(id string, fields map[string]string) *Job {
	return &Job{
		ID:               id,
		Payload:          fields["payload"],
		State:            JobState(fields["state"]),
		Attempts:         atoiOr(fields["attempts"], 0),
		MaxAttempts:      atoiOr(fields["max_attempts"], DefaultAttempts),
		StalledCount:     atoiOr(fields["stalled_count"], 0),
		BackoffDelay:     time.Duration(atoiOr(fields["backoff_delay_ms"], int(DefaultBackoffDelay.Milliseconds()))) * time.Millisecond,
		RemoveOnComplete: fields["remove_on_complete"] == "1",
		RemoveOnFail:     fields["remove_on_fail"] == "1",
		LastError:        fields["last_error"],
	}
}

func atoiOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
