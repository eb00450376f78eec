package queue

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SweepStalled scans the active set for leases that expired before now,
// re-delivering them to the waiting set up to maxStalledCount times; beyond
// that (or once their own attempts are exhausted) they're marked failed.
// This mirrors the teacher's recovery.Service.RecoverToQueue, but driven by
// lease expiry instead of process-restart detection.
func (q *Queue) SweepStalled(ctx context.Context) (int, error) {
	now := float64(time.Now().UnixMilli())
	stalled, err := q.client.ZRangeByScore(ctx, q.activeKey(), &redis.ZRangeBy{Min: "-inf", Max: strconv.FormatFloat(now, 'f', 0, 64)}).Result()
	if err != nil {
		return 0, err
	}

	var swept int
	for _, jobID := range stalled {
		if err := q.recoverStalledJob(ctx, jobID); err != nil {
			q.logger.Error("failed to recover stalled job", zap.String("job_id", jobID), zap.Error(err))
			continue
		}
		swept++
	}
	return swept, nil
}

func (q *Queue) recoverStalledJob(ctx context.Context, jobID string) error {
	job, err := q.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		// Job hash already gone (e.g. removed by a concurrent Ack); just
		// drop the stale lease entry.
		return q.client.ZRem(ctx, q.activeKey(), jobID).Err()
	}

	stalledCount := job.StalledCount + 1

	if stalledCount > q.maxStalledCount || job.Attempts >= job.MaxAttempts {
		pipe := q.client.TxPipeline()
		pipe.ZRem(ctx, q.activeKey(), jobID)
		if job.RemoveOnFail {
			pipe.Del(ctx, q.jobKey(jobID))
		} else {
			pipe.HSet(ctx, q.jobKey(jobID), map[string]interface{}{
				"state":         string(StateFailed),
				"stalled_count": stalledCount,
				"last_error":    "job stalled: lease expired without ack",
			})
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
		q.logger.Warn("stalled job marked failed", zap.String("job_id", jobID), zap.Int("stalled_count", stalledCount))
		return nil
	}

	seq, err := q.client.Incr(ctx, q.seqKey()).Result()
	if err != nil {
		return err
	}
	pipe := q.client.TxPipeline()
	pipe.ZRem(ctx, q.activeKey(), jobID)
	pipe.ZAdd(ctx, q.waitingKey(), redis.Z{Score: float64(seq), Member: jobID})
	pipe.HSet(ctx, q.jobKey(jobID), map[string]interface{}{
		"state":         string(StateWaiting),
		"stalled_count": stalledCount,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	q.logger.Warn("stalled job re-delivered", zap.String("job_id", jobID), zap.Int("stalled_count", stalledCount))
	return nil
}

// Sweeper runs SweepStalled and PromoteDelayed on a cron schedule using
// robfig/cron, the same scheduler the teacher uses elsewhere for periodic
// maintenance jobs.
type Sweeper struct {
	queue *Queue
	cron  *cron.Cron
}

// NewSweeper builds a Sweeper that ticks every interval (defaulting to the
// queue's stalledInterval if interval is zero).
func NewSweeper(q *Queue, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = q.stalledInterval
	}
	c := cron.New(cron.WithSeconds())
	s := &Sweeper{queue: q, cron: c}

	spec := everySecondsSpec(interval)
	_, _ = c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if _, err := q.SweepStalled(ctx); err != nil {
			q.logger.Error("stalled sweep failed", zap.Error(err))
		}
		if _, err := q.PromoteDelayed(ctx); err != nil {
			q.logger.Error("delayed promotion failed", zap.Error(err))
		}
	})

	return s
}

// Start begins the cron scheduler in the background.
func (s *Sweeper) Start() { s.cron.Start() }

// Stop halts the scheduler, waiting for any in-flight run to finish.
func (s *Sweeper) Stop() { <-s.cron.Stop().Done() }

// everySecondsSpec renders a robfig/cron seconds-enabled spec that fires
// roughly every d. Sub-second precision isn't meaningful for this
// scheduler, so d is rounded up to the nearest second with a one-second
// floor.
func everySecondsSpec(d time.Duration) string {
	seconds := int(d.Round(time.Second).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return "@every " + strconv.Itoa(seconds) + "s"
}
