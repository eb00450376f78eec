package store

import (
	"gorm.io/gorm"

	"github.com/verustcode/verustcode/internal/model"
)

// SuggestionStore defines operations for the AiSuggestion aggregate.
type SuggestionStore interface {
	CreateBatch(suggestions []model.AiSuggestion) error
	ListForRun(tenantID, reviewRunID string) ([]model.AiSuggestion, error)
}

type suggestionStore struct {
	db *gorm.DB
}

func newSuggestionStore(db *gorm.DB) SuggestionStore {
	return &suggestionStore{db: db}
}

func (s *suggestionStore) CreateBatch(suggestions []model.AiSuggestion) error {
	if len(suggestions) == 0 {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&suggestions).Error
	})
}

func (s *suggestionStore) ListForRun(tenantID, reviewRunID string) ([]model.AiSuggestion, error) {
	var suggestions []model.AiSuggestion
	err := s.db.Where("tenant_id = ? AND review_run_id = ?", tenantID, reviewRunID).
		Order("id ASC").Find(&suggestions).Error
	return suggestions, err
}
