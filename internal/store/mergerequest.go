package store

import (
	"gorm.io/gorm"

	"github.com/verustcode/verustcode/internal/model"
	"github.com/verustcode/verustcode/pkg/idgen"
)

// MergeRequestStore defines operations for the MergeRequest aggregate.
type MergeRequestStore interface {
	Create(mr *model.MergeRequest) error
	GetByID(tenantID, id string) (*model.MergeRequest, error)
	GetByIID(tenantID, repositoryID string, iid int) (*model.MergeRequest, error)

	// Upsert finds the MR by (tenantId, repositoryId, iid), updating mutable
	// fields (including lastSeenSha) if found, or creates it if not.
	Upsert(mr *model.MergeRequest) (*model.MergeRequest, error)

	List(tenantID string, repositoryID string, limit, offset int) ([]model.MergeRequest, int64, error)
}

type mergeRequestStore struct {
	db *gorm.DB
}

func newMergeRequestStore(db *gorm.DB) MergeRequestStore {
	return &mergeRequestStore{db: db}
}

func (s *mergeRequestStore) Create(mr *model.MergeRequest) error {
	return s.db.Create(mr).Error
}

func (s *mergeRequestStore) GetByID(tenantID, id string) (*model.MergeRequest, error) {
	var mr model.MergeRequest
	err := s.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&mr).Error
	if err != nil {
		return nil, err
	}
	return &mr, nil
}

func (s *mergeRequestStore) GetByIID(tenantID, repositoryID string, iid int) (*model.MergeRequest, error) {
	var mr model.MergeRequest
	err := s.db.Where("tenant_id = ? AND repository_id = ? AND iid = ?", tenantID, repositoryID, iid).
		First(&mr).Error
	if err != nil {
		return nil, err
	}
	return &mr, nil
}

func (s *mergeRequestStore) Upsert(mr *model.MergeRequest) (*model.MergeRequest, error) {
	var existing model.MergeRequest
	err := s.db.Where("tenant_id = ? AND repository_id = ? AND iid = ?",
		mr.TenantID, mr.RepositoryID, mr.IID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		if mr.ID == "" {
			mr.ID = idgen.NewMergeRequestID()
		}
		if err := s.db.Create(mr).Error; err != nil {
			return nil, err
		}
		return mr, nil
	}
	if err != nil {
		return nil, err
	}

	existing.Title = mr.Title
	existing.Author = mr.Author
	existing.SourceBranch = mr.SourceBranch
	existing.TargetBranch = mr.TargetBranch
	existing.State = mr.State
	existing.WebURL = mr.WebURL
	existing.LastSeenSha = mr.LastSeenSha
	if err := s.db.Save(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func (s *mergeRequestStore) List(tenantID, repositoryID string, limit, offset int) ([]model.MergeRequest, int64, error) {
	var mrs []model.MergeRequest
	var total int64

	query := s.db.Model(&model.MergeRequest{}).Where("tenant_id = ?", tenantID)
	if repositoryID != "" {
		query = query.Where("repository_id = ?", repositoryID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&mrs).Error
	return mrs, total, err
}
