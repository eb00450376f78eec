package store

import (
	"time"

	"gorm.io/gorm"

	"github.com/verustcode/verustcode/internal/model"
)

// ReviewRunStore defines operations for the ReviewRun aggregate — the
// record the worker state machine (C9) drives from QUEUED to a terminal
// state, and the record intake (C8) dedups against.
type ReviewRunStore interface {
	Create(run *model.ReviewRun) error
	GetByID(tenantID, id string) (*model.ReviewRun, error)

	// GetByIDUnscoped loads a run without a tenant filter, so the caller
	// (the orchestrator) can detect and reject a tenant mismatch explicitly
	// rather than silently treating it as not-found.
	GetByIDUnscoped(id string) (*model.ReviewRun, error)

	// GetMostRecentForHeadSha returns the latest run for a given MR+sha,
	// used by intake's same-sha dedup decision.
	GetMostRecentForHeadSha(tenantID, mergeRequestID, headSha string) (*model.ReviewRun, error)

	// GetMostRecentForMR locates the most recent run regardless of sha,
	// used by the orchestrator's payload-without-reviewRunId fallback path.
	GetMostRecentForMR(tenantID, mergeRequestID string) (*model.ReviewRun, error)

	Update(run *model.ReviewRun) error

	// MarkRunning performs the unconditional "observers see progress
	// immediately" transition of step 2: status=RUNNING, startedAt=now,
	// error cleared. Returns the row as it was *before* the update so the
	// caller can inspect the prior status.
	MarkRunning(id string) (priorStatus model.ReviewRunStatus, priorError string, err error)

	// MarkTerminal sets a terminal status with the given fields. Used for
	// both the success and failure finalization paths.
	MarkTerminal(id string, status model.ReviewRunStatus, score *int, summary, errMsg string, finishedAt time.Time) error

	// ResetForRetry resets a FAILED run back to QUEUED, clearing derived
	// fields, for the control API's retry action.
	ResetForRetry(tenantID, id string) error

	List(tenantID string, limit, offset int) ([]model.ReviewRun, int64, error)

	// LoadWithResults fetches a run with its check results and suggestions
	// eager-loaded, for the control API's detail endpoint.
	LoadWithResults(tenantID, id string) (*model.ReviewRun, error)
}

type reviewRunStore struct {
	db *gorm.DB
}

func newReviewRunStore(db *gorm.DB) ReviewRunStore {
	return &reviewRunStore{db: db}
}

func (s *reviewRunStore) Create(run *model.ReviewRun) error {
	return s.db.Create(run).Error
}

func (s *reviewRunStore) GetByID(tenantID, id string) (*model.ReviewRun, error) {
	var run model.ReviewRun
	err := s.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *reviewRunStore) GetByIDUnscoped(id string) (*model.ReviewRun, error) {
	var run model.ReviewRun
	if err := s.db.Where("id = ?", id).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *reviewRunStore) GetMostRecentForHeadSha(tenantID, mergeRequestID, headSha string) (*model.ReviewRun, error) {
	var run model.ReviewRun
	err := s.db.Where("tenant_id = ? AND merge_request_id = ? AND head_sha = ?", tenantID, mergeRequestID, headSha).
		Order("created_at DESC").First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *reviewRunStore) GetMostRecentForMR(tenantID, mergeRequestID string) (*model.ReviewRun, error) {
	var run model.ReviewRun
	err := s.db.Where("tenant_id = ? AND merge_request_id = ?", tenantID, mergeRequestID).
		Order("created_at DESC").First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *reviewRunStore) Update(run *model.ReviewRun) error {
	return s.db.Model(run).Updates(run).Error
}

func (s *reviewRunStore) MarkRunning(id string) (model.ReviewRunStatus, string, error) {
	var run model.ReviewRun
	if err := s.db.Where("id = ?", id).First(&run).Error; err != nil {
		return "", "", err
	}
	priorStatus := run.Status
	priorError := run.Error

	now := time.Now()
	err := s.db.Model(&model.ReviewRun{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     model.ReviewRunStatusRunning,
		"started_at": now,
		"error":      "",
	}).Error
	return priorStatus, priorError, err
}

func (s *reviewRunStore) MarkTerminal(id string, status model.ReviewRunStatus, score *int, summary, errMsg string, finishedAt time.Time) error {
	updates := map[string]interface{}{
		"status":      status,
		"finished_at": finishedAt,
		"summary":     summary,
		"error":       errMsg,
	}
	if score != nil {
		updates["score"] = *score
	}
	return s.db.Model(&model.ReviewRun{}).Where("id = ?", id).Updates(updates).Error
}

func (s *reviewRunStore) ResetForRetry(tenantID, id string) error {
	result := s.db.Model(&model.ReviewRun{}).
		Where("tenant_id = ? AND id = ? AND status = ?", tenantID, id, model.ReviewRunStatusFailed).
		Updates(map[string]interface{}{
			"status":           model.ReviewRunStatusQueued,
			"error":            "",
			"finished_at":      nil,
			"started_at":       nil,
			"score":            nil,
			"summary":          "",
			"progress_message": "",
			"attempt":          gorm.Expr("attempt + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *reviewRunStore) List(tenantID string, limit, offset int) ([]model.ReviewRun, int64, error) {
	var runs []model.ReviewRun
	var total int64

	query := s.db.Model(&model.ReviewRun{}).Where("tenant_id = ?", tenantID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&runs).Error
	return runs, total, err
}

func (s *reviewRunStore) LoadWithResults(tenantID, id string) (*model.ReviewRun, error) {
	var run model.ReviewRun
	err := s.db.Preload("CheckResults").Preload("Suggestions").
		Where("tenant_id = ? AND id = ?", tenantID, id).First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}
