package store

import (
	"gorm.io/gorm"

	"github.com/verustcode/verustcode/internal/model"
)

// AiConfigStore defines operations for the TenantAiConfig aggregate.
type AiConfigStore interface {
	Get(tenantID string) (*model.TenantAiConfig, error)

	// GetOrDefault returns the tenant's config, or a disabled zero-value
	// config if none has been set, so callers never need a nil check.
	GetOrDefault(tenantID string) (*model.TenantAiConfig, error)

	Upsert(cfg *model.TenantAiConfig) error
}

type aiConfigStore struct {
	db *gorm.DB
}

func newAiConfigStore(db *gorm.DB) AiConfigStore {
	return &aiConfigStore{db: db}
}

func (s *aiConfigStore) Get(tenantID string) (*model.TenantAiConfig, error) {
	var cfg model.TenantAiConfig
	if err := s.db.Where("tenant_id = ?", tenantID).First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *aiConfigStore) GetOrDefault(tenantID string) (*model.TenantAiConfig, error) {
	cfg, err := s.Get(tenantID)
	if err == nil {
		return cfg, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	return &model.TenantAiConfig{
		TenantID:          tenantID,
		Enabled:           false,
		Provider:          "anthropic",
		Model:             "claude-3-5-sonnet-20241022",
		MaxSuggestions:    5,
		MaxPromptChars:    12000,
		MaxTotalDiffBytes: 500000,
	}, nil
}

func (s *aiConfigStore) Upsert(cfg *model.TenantAiConfig) error {
	return s.db.Save(cfg).Error
}
