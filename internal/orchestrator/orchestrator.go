// Package orchestrator runs the review-run state machine (spec §4.8): it
// pops jobs off the review queue (C7) and drives a ReviewRun from QUEUED
// through RUNNING to a terminal state, composing the check engine (C1),
// precedent matcher (C2), privacy filter (C3), LLM adapter (C4), and git
// provider (C5) along the way. It is the generalized, Redis-backed
// replacement for the teacher's in-process engine.Engine worker loop.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/verustcode/verustcode/internal/activity"
	"github.com/verustcode/verustcode/internal/checkengine"
	"github.com/verustcode/verustcode/internal/git/provider"
	"github.com/verustcode/verustcode/internal/intake"
	"github.com/verustcode/verustcode/internal/llmreview"
	"github.com/verustcode/verustcode/internal/model"
	"github.com/verustcode/verustcode/internal/precedent"
	"github.com/verustcode/verustcode/internal/privacy"
	"github.com/verustcode/verustcode/internal/queue"
	"github.com/verustcode/verustcode/internal/store"
	"github.com/verustcode/verustcode/pkg/logger"
)

// fetchDiffTimeout bounds the C5 call in step 5 of the processing sequence.
const fetchDiffTimeout = 30 * time.Second

// transientMarkers are the substrings the retry gate (step 3) looks for in a
// prior run's error string to decide whether a retry is worth attempting.
var transientMarkers = []string{"429", "timeout", "network", "5xx", "502", "503", "504"}

// ProviderResolver returns the configured Provider for a provider name
// ("gitlab", "github", "gitea"), or an error if it isn't configured. The
// worker never constructs providers itself — that's a process-startup
// concern (reading tokens out of Settings/config) owned by the caller.
type ProviderResolver func(providerName string) (provider.Provider, error)

// AIGate controls whether step 10 (AI augmentation) is attempted at all, the
// process-wide half of the "AI_ENABLED && tenant config && byte budget" gate
// in spec §4.8 step 10.
type AIGate struct {
	Enabled bool
	Client  llmreview.Client
}

// Worker is one review-run processing loop. Concurrency is configured by
// running multiple Workers over the same Queue/Store, matching spec §4.8's
// "concurrency configurable; default 1".
type Worker struct {
	store     store.Store
	queue     *queue.Queue
	providers ProviderResolver
	registry  *checkengine.Registry
	ai        AIGate

	logger *zap.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewWorker builds a Worker. registry is the check set to run; pass
// checkengine.DefaultRegistry() for the built-in checks.
func NewWorker(s store.Store, q *queue.Queue, providers ProviderResolver, registry *checkengine.Registry, ai AIGate) *Worker {
	return &Worker{
		store:     s,
		queue:     q,
		providers: providers,
		registry:  registry,
		ai:        ai,
		logger:    logger.Named("orchestrator"),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Run polls the queue until ctx is cancelled or Stop is called, processing
// one job at a time. Callers wanting concurrency > 1 run several Workers
// against the same Queue concurrently (Pop's ZPOPMIN lease is the mutual
// exclusion point).
func (w *Worker) Run(ctx context.Context) {
	defer close(w.doneCh)

	w.logger.Info("orchestrator worker started")
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("orchestrator worker stopping: context cancelled")
			return
		case <-w.stopCh:
			w.logger.Info("orchestrator worker stopping")
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// Stop signals Run to exit and blocks until it has.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.doneCh
}

// drain pops and processes jobs until the queue reports empty, so a burst of
// enqueued work is not throttled by the poll ticker.
func (w *Worker) drain(ctx context.Context) {
	for {
		job, err := w.queue.Pop(ctx)
		if err != nil {
			w.logger.Error("failed to pop job", zap.Error(err))
			return
		}
		if job == nil {
			return
		}
		w.processJob(ctx, job)
	}
}

// processJob decodes the job payload and runs the twelve-step sequence,
// acking or failing the queue job based on the outcome. A permanent failure
// (tenant mismatch, run not found, non-transient retry gate) is acked, not
// failed, since re-delivery would only repeat the same permanent outcome.
func (w *Worker) processJob(ctx context.Context, job *queue.Job) {
	var payload intake.Payload
	if err := decodePayload(job.Payload, &payload); err != nil {
		w.logger.Error("failed to decode job payload", zap.String("job_id", job.ID), zap.Error(err))
		_ = w.queue.Fail(ctx, job.ID, err)
		return
	}

	runID, permanent, err := w.processRun(ctx, payload)
	if err == nil {
		_ = w.queue.Ack(ctx, job.ID)
		return
	}

	w.logger.Error("review run failed",
		zap.String("job_id", job.ID),
		zap.String("review_run_id", runID),
		zap.Bool("permanent", permanent),
		zap.Error(err),
	)
	if permanent {
		_ = w.queue.Ack(ctx, job.ID)
		return
	}
	_ = w.queue.Fail(ctx, job.ID, err)
}

// processRun implements spec §4.8 steps 1-12 plus the guaranteed-finalization
// invariant. It returns the resolved review run id (for logging even on
// failure to locate) and whether the failure is permanent (no further
// retries should be attempted by the queue).
func (w *Worker) processRun(ctx context.Context, payload intake.Payload) (runID string, permanent bool, err error) {
	// Step 1: locate.
	run, permanent, err := w.locateRun(payload)
	if err != nil {
		return "", permanent, err
	}
	runID = run.ID
	runLogger := w.logger.With(zap.String(logger.FieldReviewRunID, runID))

	// Step 2: mark RUNNING unconditionally.
	priorStatus, priorError, err := w.store.ReviewRun().MarkRunning(runID)
	if err != nil {
		return runID, false, err
	}
	if priorStatus == model.ReviewRunStatusSucceeded {
		runLogger.Info("run already succeeded, no-op")
		_ = w.store.ReviewRun().MarkTerminal(runID, model.ReviewRunStatusSucceeded, nil, "", "", time.Now())
		return runID, false, nil
	}

	// Step 3: retry gate.
	if priorStatus == model.ReviewRunStatusFailed && !isTransientError(priorError) {
		runLogger.Warn("retry gate rejected non-transient prior error, leaving FAILED",
			zap.String("prior_error", priorError))
		w.finalizeFailed(runID, priorError, time.Now())
		return runID, true, errors.New("non-transient prior failure: " + priorError)
	}

	// Guaranteed finalization: anything past this point that returns an
	// error not already finalized is forced to FAILED before we return.
	finalized := false
	defer func() {
		if !finalized {
			msg := "Unexpected termination: job completed without setting final status"
			if err != nil {
				msg = sanitizeError(err)
			}
			if r := recover(); r != nil {
				msg = "panic during review processing"
				w.finalizeFailed(runID, msg, time.Now())
				runLogger.Error("recovered from panic in review processing", zap.Any("panic", r))
				permanent = false
				return
			}
			w.finalizeFailed(runID, msg, time.Now())
		}
	}()

	tenant, err := w.store.Tenant().GetByID(payload.TenantID)
	if err != nil {
		return runID, false, err
	}
	repo, err := w.store.Repository().GetByID(tenant.ID, payload.RepositoryID)
	if err != nil {
		return runID, false, err
	}
	mr, err := w.store.MergeRequest().GetByID(tenant.ID, payload.MergeRequestID)
	if err != nil {
		return runID, false, err
	}

	// Step 4: idempotency check.
	exists, err := w.store.CheckResult().ExistsForRun(runID)
	if err != nil {
		return runID, false, err
	}

	var results []checkengine.Result
	var score int
	var diff *provider.DiffSet

	if exists {
		results, err = w.loadExistingResults(tenant.ID, runID)
		if err != nil {
			return runID, false, err
		}
		score = checkengine.Score(results)
	} else {
		prov, perr := w.providers(payload.Provider)
		if perr != nil {
			w.finalizeFailed(runID, sanitizeError(perr), time.Now())
			finalized = true
			return runID, true, perr
		}

		// Step 5: fetch diff, 30s timeout.
		fetchCtx, cancel := context.WithTimeout(ctx, fetchDiffTimeout)
		diff, err = prov.GetMergeRequestChanges(fetchCtx, repo.Namespace, repo.Name, mr.IID)
		cancel()
		if err != nil {
			authErr := isAuthOrNotFoundError(err)
			w.finalizeFailed(runID, sanitizeError(err), time.Now())
			finalized = true
			return runID, authErr, err
		}

		changes := toFileChanges(diff)

		// Step 6: load check configs.
		overlay, err := w.loadOverlay(tenant.ID, repo.ID)
		if err != nil {
			return runID, false, err
		}

		// Step 7+8: run checks, score.
		rc := &checkengine.RunContext{
			Changes: changes,
			MR:      checkengine.MRContext{Title: mr.Title},
		}
		results, score = checkengine.Run(ctx, w.registry, rc, overlay)

		rows := toCheckResultRows(tenant.ID, runID, results)
		if err := w.store.CheckResult().CreateBatch(rows); err != nil {
			return runID, false, err
		}
	}

	// Step 9: knowledge.
	var matches []precedent.Match
	goldPromoted := false
	if mr.State == model.MergeRequestStateMerged {
		goldPromoted, err = w.evaluateGoldEligibility(tenant, repo, mr, results, score, diff)
		if err != nil {
			runLogger.Warn("gold eligibility evaluation failed, continuing without promotion", zap.Error(err))
		}
	} else if diff != nil {
		_, matches, err = precedent.Lookup(w.store, tenant.ID, precedent.MRInput{
			Title:       mr.Title,
			Description: "",
			Changes:     toFileChanges(diff),
		})
		if err != nil {
			runLogger.Warn("precedent lookup failed, continuing without precedents", zap.Error(err))
			matches = nil
		}
	}

	// Step 10: AI augmentation (best-effort, never fails the run).
	var suggestions []llmreview.Suggestion
	if diff != nil {
		suggestions = w.augmentWithAI(ctx, runLogger, tenant, mr, results, matches, diff)
		if len(suggestions) > 0 {
			rows := toSuggestionRows(tenant.ID, runID, suggestions)
			if err := w.store.Suggestion().CreateBatch(rows); err != nil {
				runLogger.Warn("failed to persist AI suggestions", zap.Error(err))
			}
		}
	}

	// Step 11: comment reconciliation.
	if prov, perr := w.providers(payload.Provider); perr == nil {
		if err := w.reconcileComment(ctx, runLogger, tenant, repo, mr, prov, runID, run.HeadSha, score, results, matches, suggestions, goldPromoted); err != nil {
			runLogger.Warn("comment reconciliation failed, continuing to finalize", zap.Error(err))
		}
	}

	// Step 12: finalize.
	summary := checkengine.FormatSummary(results)
	if err := w.store.ReviewRun().MarkTerminal(runID, model.ReviewRunStatusSucceeded, &score, summary, "", time.Now()); err != nil {
		return runID, false, err
	}
	finalized = true

	runLogger.Info("review run succeeded", zap.Int("score", score), zap.String("summary", summary))
	activity.Record(activity.Entry{
		TenantID: tenant.ID,
		Kind:     "review.succeeded",
		Message:  summary,
		Fields:   map[string]interface{}{"review_run_id": runID, "score": score},
	})

	return runID, false, nil
}

func (w *Worker) finalizeFailed(runID, errMsg string, finishedAt time.Time) {
	if err := w.store.ReviewRun().MarkTerminal(runID, model.ReviewRunStatusFailed, nil, "", errMsg, finishedAt); err != nil {
		w.logger.Error("failed to finalize run as FAILED", zap.String(logger.FieldReviewRunID, runID), zap.Error(err))
	}
	activity.Record(activity.Entry{
		Kind:    "review.failed",
		Message: errMsg,
		Fields:  map[string]interface{}{"review_run_id": runID},
	})
}

// locateRun implements step 1: resolve by reviewRunId if present, verifying
// tenant match; otherwise fall back to the most recent run for the MR.
func (w *Worker) locateRun(payload intake.Payload) (*model.ReviewRun, bool, error) {
	if payload.ReviewRunID != "" {
		run, err := w.store.ReviewRun().GetByIDUnscoped(payload.ReviewRunID)
		if err != nil {
			return nil, true, err
		}
		if run.TenantID != payload.TenantID {
			return nil, true, errors.New("tenant mismatch for review run " + payload.ReviewRunID)
		}
		return run, false, nil
	}

	run, err := w.store.ReviewRun().GetMostRecentForMR(payload.TenantID, payload.MergeRequestID)
	if err != nil {
		return nil, true, err
	}
	return run, false, nil
}

func (w *Worker) loadExistingResults(tenantID, runID string) ([]checkengine.Result, error) {
	rows, err := w.store.CheckResult().ListForRun(tenantID, runID)
	if err != nil {
		return nil, err
	}
	out := make([]checkengine.Result, 0, len(rows))
	for _, r := range rows {
		out = append(out, checkengine.Result{
			CheckKey:  r.CheckKey,
			Category:  checkengine.Category(r.Category),
			Status:    checkengine.Status(r.Status),
			Severity:  checkengine.Severity(r.Severity),
			Message:   r.Message,
			FilePath:  r.FilePath,
			LineStart: r.LineStart,
			LineEnd:   r.LineEnd,
			Evidence:  r.Evidence,
		})
	}
	return out, nil
}

func (w *Worker) loadOverlay(tenantID, repositoryID string) (map[string]checkengine.Overlay, error) {
	overlay := map[string]checkengine.Overlay{}

	tenantCfgs, err := w.store.CheckConfig().ListForTenant(tenantID)
	if err != nil {
		return nil, err
	}
	for _, c := range tenantCfgs {
		overlay[c.CheckKey] = checkengine.Overlay{
			Enabled:          c.Enabled,
			SeverityOverride: c.SeverityOverride,
			Thresholds:       c.Thresholds,
		}
	}

	repoCfgs, err := w.store.CheckConfig().ListForRepository(tenantID, repositoryID)
	if err != nil {
		return nil, err
	}
	for _, c := range repoCfgs {
		overlay[c.CheckKey] = checkengine.Overlay{
			Enabled:          c.Enabled,
			SeverityOverride: c.SeverityOverride,
			Thresholds:       c.Thresholds,
		}
	}

	return overlay, nil
}

func toFileChanges(diff *provider.DiffSet) []checkengine.FileChange {
	if diff == nil {
		return nil
	}
	out := make([]checkengine.FileChange, 0, len(diff.Files))
	for _, f := range diff.Files {
		path := f.NewPath
		if path == "" {
			path = f.OldPath
		}
		out = append(out, checkengine.FileChange{Path: path, Diff: f.Diff})
	}
	return out
}

func toCheckResultRows(tenantID, runID string, results []checkengine.Result) []model.ReviewCheckResult {
	out := make([]model.ReviewCheckResult, 0, len(results))
	for _, r := range results {
		out = append(out, model.ReviewCheckResult{
			TenantID:    tenantID,
			ReviewRunID: runID,
			CheckKey:    r.CheckKey,
			Category:    model.CheckCategory(r.Category),
			Status:      model.CheckStatus(r.Status),
			Severity:    model.CheckSeverity(r.Severity),
			Message:     r.Message,
			FilePath:    r.FilePath,
			LineStart:   r.LineStart,
			LineEnd:     r.LineEnd,
			Evidence:    model.JSONMap(r.Evidence),
		})
	}
	return out
}

func toSuggestionRows(tenantID, runID string, suggestions []llmreview.Suggestion) []model.AiSuggestion {
	out := make([]model.AiSuggestion, 0, len(suggestions))
	for _, s := range suggestions {
		files := make(model.AiSuggestionFiles, 0, len(s.Files))
		for _, f := range s.Files {
			files = append(files, model.AiSuggestionFile{Path: f.Path, LineStart: f.LineStart, LineEnd: f.LineEnd})
		}
		out = append(out, model.AiSuggestion{
			TenantID:      tenantID,
			ReviewRunID:   runID,
			CheckKey:      s.CheckKey,
			Severity:      model.CheckSeverity(s.Severity),
			Title:         s.Title,
			Rationale:     s.Rationale,
			SuggestedFix:  s.SuggestedFix,
			Files:         files,
			PrecedentRefs: model.StringArray(s.PrecedentRefs),
		})
	}
	return out
}

// isTransientError implements step 3's prior-error inspection.
func isTransientError(errMsg string) bool {
	lower := strings.ToLower(errMsg)
	for _, marker := range transientMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// isAuthOrNotFoundError reports whether err looks like a 401/403/404 from
// the git provider, the permanent-failure case from spec §4.8's error
// handling rules.
func isAuthOrNotFoundError(err error) bool {
	var provErr *provider.ProviderError
	if errors.As(err, &provErr) {
		msg := strings.ToLower(provErr.Message)
		return strings.Contains(msg, "401") || strings.Contains(msg, "403") ||
			strings.Contains(msg, "404") || strings.Contains(msg, "unauthorized") ||
			strings.Contains(msg, "forbidden") || strings.Contains(msg, "not found")
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true
	}
	return false
}

// sanitizeError strips anything that looks like it could carry a credential
// (a bearer token echoed into an HTTP client error, say) before the message
// is persisted to ReviewRun.Error, which is tenant-visible via the control
// API.
func sanitizeError(err error) string {
	msg := err.Error()
	if idx := strings.Index(strings.ToLower(msg), "token="); idx != -1 {
		msg = msg[:idx] + "[redacted]"
	}
	return msg
}

func decodePayload(raw string, out *intake.Payload) error {
	return json.Unmarshal([]byte(raw), out)
}
