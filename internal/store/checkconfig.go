package store

import (
	"gorm.io/gorm"

	"github.com/verustcode/verustcode/internal/model"
)

// CheckConfigStore defines operations for the tenant and repository check
// overlay aggregates.
type CheckConfigStore interface {
	ListForTenant(tenantID string) ([]model.CheckConfig, error)
	ListForRepository(tenantID, repositoryID string) ([]model.RepositoryCheckConfig, error)

	UpsertTenant(cfg *model.CheckConfig) error
	UpsertRepository(cfg *model.RepositoryCheckConfig) error
}

type checkConfigStore struct {
	db *gorm.DB
}

func newCheckConfigStore(db *gorm.DB) CheckConfigStore {
	return &checkConfigStore{db: db}
}

func (s *checkConfigStore) ListForTenant(tenantID string) ([]model.CheckConfig, error) {
	var configs []model.CheckConfig
	err := s.db.Where("tenant_id = ?", tenantID).Find(&configs).Error
	return configs, err
}

func (s *checkConfigStore) ListForRepository(tenantID, repositoryID string) ([]model.RepositoryCheckConfig, error) {
	var configs []model.RepositoryCheckConfig
	err := s.db.Where("tenant_id = ? AND repository_id = ?", tenantID, repositoryID).Find(&configs).Error
	return configs, err
}

func (s *checkConfigStore) UpsertTenant(cfg *model.CheckConfig) error {
	var existing model.CheckConfig
	err := s.db.Where("tenant_id = ? AND check_key = ?", cfg.TenantID, cfg.CheckKey).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return s.db.Create(cfg).Error
	}
	if err != nil {
		return err
	}
	cfg.ID = existing.ID
	return s.db.Save(cfg).Error
}

func (s *checkConfigStore) UpsertRepository(cfg *model.RepositoryCheckConfig) error {
	var existing model.RepositoryCheckConfig
	err := s.db.Where("tenant_id = ? AND repository_id = ? AND check_key = ?",
		cfg.TenantID, cfg.RepositoryID, cfg.CheckKey).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return s.db.Create(cfg).Error
	}
	if err != nil {
		return err
	}
	cfg.ID = existing.ID
	return s.db.Save(cfg).Error
}
