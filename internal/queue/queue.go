// Package queue is a durable FIFO job queue backed by Redis. It externalizes
// the teacher's in-process engine.RepoTaskQueue (per-id dedup, FIFO
// ordering, structured enqueue/pop/ack logging) to Redis so queued review
// jobs survive a process restart, per spec §4.6.
package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/verustcode/verustcode/pkg/logger"
)

// JobState is a job's position in its lifecycle.
type JobState string

const (
	StateWaiting   JobState = "waiting"
	StateActive    JobState = "active"
	StateDelayed   JobState = "delayed"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
)

// Default tunables from spec §4.6.
const (
	DefaultAttempts        = 3
	DefaultBackoffDelay    = 2 * time.Second
	DefaultLockDuration    = 5 * time.Minute
	DefaultStalledInterval = 30 * time.Second
	DefaultMaxStalledCount = 1
)

// EnqueueOptions configures one job's retry/cleanup policy.
type EnqueueOptions struct {
	Attempts         int
	BackoffDelay     time.Duration
	RemoveOnComplete bool
	RemoveOnFail     bool
}

func (o EnqueueOptions) withDefaults() EnqueueOptions {
	if o.Attempts <= 0 {
		o.Attempts = DefaultAttempts
	}
	if o.BackoffDelay <= 0 {
		o.BackoffDelay = DefaultBackoffDelay
	}
	return o
}

// Job is a queued unit of work as read back from Redis.
type Job struct {
	ID               string
	Payload          string
	State            JobState
	Attempts         int
	MaxAttempts      int
	StalledCount     int
	BackoffDelay     time.Duration
	RemoveOnComplete bool
	RemoveOnFail     bool
	LastError        string
}

// Queue is a Redis-backed durable job queue. One Queue instance corresponds
// to one logical queue (namespace); callers needing multiple queues (e.g.
// per job type) create one Queue per namespace.
type Queue struct {
	client *redis.Client
	ns     string

	lockDuration    time.Duration
	stalledInterval time.Duration
	maxStalledCount int

	logger *zap.Logger
}

// Option configures a Queue at construction time.
type Option func(*Queue)

func WithLockDuration(d time.Duration) Option    { return func(q *Queue) { q.lockDuration = d } }
func WithStalledInterval(d time.Duration) Option { return func(q *Queue) { q.stalledInterval = d } }
func WithMaxStalledCount(n int) Option           { return func(q *Queue) { q.maxStalledCount = n } }

// New builds a Queue over an existing Redis client, scoped to namespace ns
// (e.g. "verustcode:review").
func New(client *redis.Client, ns string, opts ...Option) *Queue {
	q := &Queue{
		client:          client,
		ns:              ns,
		lockDuration:    DefaultLockDuration,
		stalledInterval: DefaultStalledInterval,
		maxStalledCount: DefaultMaxStalledCount,
		logger:          logger.Named("queue." + ns),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *Queue) waitingKey() string { return q.ns + ":waiting" }
func (q *Queue) delayedKey() string { return q.ns + ":delayed" }
func (q *Queue) activeKey() string  { return q.ns + ":active" }
func (q *Queue) seqKey() string     { return q.ns + ":seq" }
func (q *Queue) jobKey(id string) string { return q.ns + ":job:" + id }

// JobID builds the job-identity string from spec §4.6:
// "${tenantSlug}__${provider}__${projectId}__${mrIid}__${headSha}__${reviewRunId?}".
// reviewRunID may be empty for webhook-triggered jobs but is mandatory for
// manual triggers, where callers must pass a non-empty value to make the
// job unique per manual retry.
func JobID(tenantSlug, provider, projectID, mrIID, headSHA, reviewRunID string) string {
	id := fmt.Sprintf("%s__%s__%s__%s__%s", tenantSlug, provider, projectID, mrIID, headSHA)
	if reviewRunID != "" {
		id += "__" + reviewRunID
	}
	return id
}
