package intake

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/verustcode/verustcode/internal/activity"
	"github.com/verustcode/verustcode/internal/model"
	"github.com/verustcode/verustcode/internal/queue"
	"github.com/verustcode/verustcode/internal/store"
	"github.com/verustcode/verustcode/pkg/idgen"
	"github.com/verustcode/verustcode/pkg/logger"
)

// Disposition is the outcome category HandleWebhook reports back to the
// HTTP layer, which maps it onto the status code spec §4.7 step 1/3/5 call
// for (401 unauthenticated, 202 ignored, 200 already-handled/ack).
type Disposition string

const (
	DispositionUnauthorized Disposition = "unauthorized"
	DispositionIgnored      Disposition = "ignored"
	DispositionAcknowledged Disposition = "acknowledged" // dedup hit on an in-flight/succeeded run
	DispositionQueued       Disposition = "queued"
)

// Result is what HandleWebhook/Trigger return to their caller.
type Result struct {
	Disposition Disposition
	Reason      string
	ReviewRunID string
	MrIID       int
}

// Payload is the JSON body enqueued for a job; the orchestrator (C9)
// decodes it back out on Pop.
type Payload struct {
	ReviewRunID    string `json:"reviewRunId"`
	TenantID       string `json:"tenantId"`
	Provider       string `json:"provider"`
	RepositoryID   string `json:"repositoryId"`
	MergeRequestID string `json:"mergeRequestId"`
	ProjectID      string `json:"projectId"`
	MrIID          int    `json:"mrIid"`
	HeadSha        string `json:"headSha"`
}

// Service holds the provider-independent reconciliation logic: tenant
// authentication, repository/MR upsert, the dedup decision, and job
// enqueue. This is the generalized equivalent of the teacher's
// WebhookHandler.handlePREvent, minus the HTTP concerns (those live in
// internal/api/handler/webhook.go).
type Service struct {
	store  store.Store
	queue  *queue.Queue
	logger *zap.Logger
}

// NewService builds an intake Service over a store and the review queue.
func NewService(s store.Store, q *queue.Queue) *Service {
	return &Service{store: s, queue: q, logger: logger.Named("intake")}
}

// HandleWebhook implements spec §4.7 steps 1-6 for an inbound provider
// webhook. secret is whatever the HTTP layer read from the provider's
// signature header (or the documented query-param fallback).
func (s *Service) HandleWebhook(ctx context.Context, providerName, secret string, payload []byte) (Result, error) {
	tenant, err := s.store.Tenant().GetByProviderSecret(providerName, secret)
	if err != nil {
		activity.Record(activity.Entry{
			Kind:    "webhook.unauthorized",
			Message: "no tenant matched provider secret",
			Fields:  map[string]interface{}{"provider": providerName},
		})
		return Result{Disposition: DispositionUnauthorized, Reason: "no tenant matched"}, nil
	}

	event, err := ParseEvent(payload)
	if err != nil {
		return Result{}, err
	}

	if event.Action == "" || event.Action == "close" {
		activity.Record(activity.Entry{
			TenantID: tenant.ID,
			Kind:     "webhook.ignored",
			Message:  "action not actionable",
			Fields:   map[string]interface{}{"action": event.Action, "provider": providerName},
		})
		return Result{Disposition: DispositionIgnored, Reason: "action not actionable"}, nil
	}

	if event.Action == "merge" && event.HeadSha == "" {
		activity.Record(activity.Entry{
			TenantID: tenant.ID,
			Kind:     "webhook.ignored",
			Message:  "merge event without head sha",
		})
		return Result{Disposition: DispositionIgnored, Reason: "merge without head sha"}, nil
	}

	if !event.HasRequiredFields() {
		activity.Record(activity.Entry{
			TenantID: tenant.ID,
			Kind:     "webhook.ignored",
			Message:  "missing required fields",
		})
		return Result{Disposition: DispositionIgnored, Reason: "missing required fields"}, nil
	}

	repo, mr, err := s.upsertRepoAndMR(tenant.ID, providerName, event)
	if err != nil {
		return Result{}, err
	}

	return s.dedupAndEnqueue(ctx, tenant, providerName, repo, mr, event.HeadSha, model.ReviewRunTriggerWebhook, "")
}

// ErrRunNotFailed is returned by Retry when the run isn't in a state the
// control API is allowed to retry from.
var ErrRunNotFailed = errors.New("review run is not in a failed state")

// Retry implements the control API's POST /review-runs/:id/retry: reset a
// FAILED run back to QUEUED and re-enqueue it under its existing
// reviewRunId, so the job identity (and therefore dedup) stays stable
// across a retry.
func (s *Service) Retry(ctx context.Context, tenantID, reviewRunID string) (Result, error) {
	run, err := s.store.ReviewRun().GetByID(tenantID, reviewRunID)
	if err != nil {
		return Result{}, err
	}
	if run.Status != model.ReviewRunStatusFailed {
		return Result{}, ErrRunNotFailed
	}

	mr, err := s.store.MergeRequest().GetByID(tenantID, run.MergeRequestID)
	if err != nil {
		return Result{}, err
	}
	repo, err := s.store.Repository().GetByID(tenantID, mr.RepositoryID)
	if err != nil {
		return Result{}, err
	}
	tenant, err := s.store.Tenant().GetByID(tenantID)
	if err != nil {
		return Result{}, err
	}

	if err := s.store.ReviewRun().ResetForRetry(tenantID, reviewRunID); err != nil {
		return Result{}, err
	}

	return s.enqueue(ctx, tenant, repo.Provider, repo, mr, reviewRunID, run.HeadSha)
}

// Trigger implements the manual-trigger endpoint: the MR metadata has
// already been refreshed from C5 by the caller (internal/api/handler),
// so this always takes the fresh-run path of the dedup decision, with a
// caller-supplied reviewRunId component so every manual trigger's job
// identity is unique per spec §4.6.
func (s *Service) Trigger(ctx context.Context, tenant *model.Tenant, providerName string, repo *model.Repository, mr *model.MergeRequest, headSha string) (Result, error) {
	return s.dedupAndEnqueue(ctx, tenant, providerName, repo, mr, headSha, model.ReviewRunTriggerManual, idgen.NewReviewRunID())
}

func (s *Service) upsertRepoAndMR(tenantID, providerName string, event Event) (*model.Repository, *model.MergeRequest, error) {
	repo, err := s.store.Repository().Upsert(&model.Repository{
		TenantID:       tenantID,
		Provider:       providerName,
		ProviderRepoID: event.ProjectID,
		Namespace:      event.Namespace,
		Name:           event.Name,
	})
	if err != nil {
		return nil, nil, err
	}

	mr, err := s.store.MergeRequest().Upsert(&model.MergeRequest{
		TenantID:     tenantID,
		RepositoryID: repo.ID,
		IID:          event.MrIID,
		Title:        event.Title,
		Author:       event.Author,
		SourceBranch: event.SourceBranch,
		TargetBranch: event.TargetBranch,
		State:        mrState(event),
		WebURL:       event.WebURL,
		LastSeenSha:  event.HeadSha,
	})
	if err != nil {
		return nil, nil, err
	}

	return repo, mr, nil
}

// mrState is only reached for the open/update/reopen/merge actions that
// survive HandleWebhook's action filter (close is ignored before this
// point).
func mrState(event Event) model.MergeRequestState {
	if event.Action == "merge" {
		return model.MergeRequestStateMerged
	}
	return model.MergeRequestStateOpened
}

// dedupAndEnqueue implements spec §4.7 step 5: decide whether headSha is a
// genuinely new revision of mr, and if so (re-)enqueue a job for it.
func (s *Service) dedupAndEnqueue(ctx context.Context, tenant *model.Tenant, providerName string, repo *model.Repository, mr *model.MergeRequest, headSha string, trigger model.ReviewRunTriggerSource, reviewRunIDOverride string) (Result, error) {
	if headSha == mr.LastSeenSha && reviewRunIDOverride == "" {
		prior, err := s.store.ReviewRun().GetMostRecentForHeadSha(tenant.ID, mr.ID, headSha)
		if err != nil && err != gorm.ErrRecordNotFound {
			return Result{}, err
		}
		if prior != nil {
			switch prior.Status {
			case model.ReviewRunStatusSucceeded, model.ReviewRunStatusQueued, model.ReviewRunStatusRunning:
				activity.Record(activity.Entry{
					TenantID: tenant.ID,
					Kind:     "webhook.ignored",
					Message:  "duplicate sha with an in-flight or completed run",
					Fields:   map[string]interface{}{"review_run_id": prior.ID, "status": string(prior.Status)},
				})
				return Result{Disposition: DispositionAcknowledged, ReviewRunID: prior.ID, MrIID: mr.IID}, nil
			case model.ReviewRunStatusFailed:
				if err := s.store.ReviewRun().ResetForRetry(tenant.ID, prior.ID); err != nil {
					return Result{}, err
				}
				return s.enqueue(ctx, tenant, providerName, repo, mr, prior.ID, headSha)
			}
		}
	}

	run := &model.ReviewRun{
		ID:             reviewRunIDOverride,
		TenantID:       tenant.ID,
		MergeRequestID: mr.ID,
		HeadSha:        headSha,
		Status:         model.ReviewRunStatusQueued,
		TriggerSource:  trigger,
	}
	if run.ID == "" {
		run.ID = idgen.NewReviewRunID()
	}
	if err := s.store.ReviewRun().Create(run); err != nil {
		return Result{}, err
	}

	return s.enqueue(ctx, tenant, providerName, repo, mr, run.ID, headSha)
}

func (s *Service) enqueue(ctx context.Context, tenant *model.Tenant, providerName string, repo *model.Repository, mr *model.MergeRequest, reviewRunID, headSha string) (Result, error) {
	jobID := queue.JobID(tenant.Slug, providerName, repo.ProviderRepoID, strconv.Itoa(mr.IID), headSha, reviewRunID)

	payload, err := json.Marshal(Payload{
		ReviewRunID:    reviewRunID,
		TenantID:       tenant.ID,
		Provider:       providerName,
		RepositoryID:   repo.ID,
		MergeRequestID: mr.ID,
		ProjectID:      repo.ProviderRepoID,
		MrIID:          mr.IID,
		HeadSha:        headSha,
	})
	if err != nil {
		return Result{}, err
	}

	if err := s.queue.Enqueue(ctx, jobID, string(payload), queue.EnqueueOptions{}); err != nil {
		return Result{}, err
	}

	s.logger.Info("job enqueued from intake",
		zap.String("tenant_id", tenant.ID),
		zap.String("review_run_id", reviewRunID),
		zap.String("job_id", jobID),
	)
	activity.Record(activity.Entry{
		TenantID: tenant.ID,
		Kind:     "review.queued",
		Message:  "review run queued",
		Fields:   map[string]interface{}{"review_run_id": reviewRunID, "mr_iid": mr.IID},
	})

	return Result{Disposition: DispositionQueued, ReviewRunID: reviewRunID, MrIID: mr.IID}, nil
}
