package store

import (
	"gorm.io/gorm"

	"github.com/verustcode/verustcode/internal/model"
)

// CheckResultStore defines operations for the ReviewCheckResult aggregate.
type CheckResultStore interface {
	// CreateBatch persists all results for a run atomically (invariant 4:
	// "ReviewCheckResult rows are created atomically as a set").
	CreateBatch(results []model.ReviewCheckResult) error

	// ExistsForRun reports whether any result row exists for the run — the
	// worker's idempotency marker for "checks already executed".
	ExistsForRun(reviewRunID string) (bool, error)

	ListForRun(tenantID, reviewRunID string) ([]model.ReviewCheckResult, error)
}

type checkResultStore struct {
	db *gorm.DB
}

func newCheckResultStore(db *gorm.DB) CheckResultStore {
	return &checkResultStore{db: db}
}

func (s *checkResultStore) CreateBatch(results []model.ReviewCheckResult) error {
	if len(results) == 0 {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&results).Error
	})
}

func (s *checkResultStore) ExistsForRun(reviewRunID string) (bool, error) {
	var count int64
	err := s.db.Model(&model.ReviewCheckResult{}).Where("review_run_id = ?", reviewRunID).Count(&count).Error
	return count > 0, err
}

func (s *checkResultStore) ListForRun(tenantID, reviewRunID string) ([]model.ReviewCheckResult, error) {
	var results []model.ReviewCheckResult
	err := s.db.Where("tenant_id = ? AND review_run_id = ?", tenantID, reviewRunID).
		Order("id ASC").Find(&results).Error
	return results, err
}
