package store

import (
	"gorm.io/gorm"

	"github.com/verustcode/verustcode/internal/model"
)

// CommentStore defines operations for the PostedComment aggregate.
type CommentStore interface {
	// GetSummaryForRun fetches the at-most-one SUMMARY comment for a run, if
	// any (invariant 3).
	GetSummaryForRun(tenantID, reviewRunID string) (*model.PostedComment, error)

	Create(comment *model.PostedComment) error
	Update(comment *model.PostedComment) error
}

type commentStore struct {
	db *gorm.DB
}

func newCommentStore(db *gorm.DB) CommentStore {
	return &commentStore{db: db}
}

func (s *commentStore) GetSummaryForRun(tenantID, reviewRunID string) (*model.PostedComment, error) {
	var comment model.PostedComment
	err := s.db.Where("tenant_id = ? AND review_run_id = ? AND type = ?",
		tenantID, reviewRunID, model.PostedCommentTypeSummary).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *commentStore) Create(comment *model.PostedComment) error {
	return s.db.Create(comment).Error
}

func (s *commentStore) Update(comment *model.PostedComment) error {
	return s.db.Save(comment).Error
}
