package store

import (
	"gorm.io/gorm"

	"github.com/verustcode/verustcode/internal/model"
	"github.com/verustcode/verustcode/pkg/idgen"
)

// RepositoryStore defines operations for the Repository aggregate.
type RepositoryStore interface {
	Create(repo *model.Repository) error
	GetByID(tenantID, id string) (*model.Repository, error)
	GetByProviderRepoID(tenantID, provider, providerRepoID string) (*model.Repository, error)

	// Upsert finds the repository by (tenantId, provider, providerRepoId),
	// updating mutable fields if found, or creates it if not.
	Upsert(repo *model.Repository) (*model.Repository, error)

	List(tenantID string, limit, offset int) ([]model.Repository, int64, error)
}

type repositoryStore struct {
	db *gorm.DB
}

func newRepositoryStore(db *gorm.DB) RepositoryStore {
	return &repositoryStore{db: db}
}

func (s *repositoryStore) Create(repo *model.Repository) error {
	return s.db.Create(repo).Error
}

func (s *repositoryStore) GetByID(tenantID, id string) (*model.Repository, error) {
	var repo model.Repository
	err := s.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&repo).Error
	if err != nil {
		return nil, err
	}
	return &repo, nil
}

func (s *repositoryStore) GetByProviderRepoID(tenantID, provider, providerRepoID string) (*model.Repository, error) {
	var repo model.Repository
	err := s.db.Where("tenant_id = ? AND provider = ? AND provider_repo_id = ?", tenantID, provider, providerRepoID).
		First(&repo).Error
	if err != nil {
		return nil, err
	}
	return &repo, nil
}

func (s *repositoryStore) Upsert(repo *model.Repository) (*model.Repository, error) {
	var existing model.Repository
	err := s.db.Where("tenant_id = ? AND provider = ? AND provider_repo_id = ?",
		repo.TenantID, repo.Provider, repo.ProviderRepoID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		if repo.ID == "" {
			repo.ID = idgen.NewRepositoryID()
		}
		if err := s.db.Create(repo).Error; err != nil {
			return nil, err
		}
		return repo, nil
	}
	if err != nil {
		return nil, err
	}

	existing.Namespace = repo.Namespace
	existing.Name = repo.Name
	if repo.DefaultBranch != "" {
		existing.DefaultBranch = repo.DefaultBranch
	}
	if err := s.db.Save(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func (s *repositoryStore) List(tenantID string, limit, offset int) ([]model.Repository, int64, error) {
	var repos []model.Repository
	var total int64

	query := s.db.Model(&model.Repository{}).Where("tenant_id = ?", tenantID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&repos).Error
	return repos, total, err
}
