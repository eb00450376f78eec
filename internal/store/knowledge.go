package store

import (
	"gorm.io/gorm"

	"github.com/verustcode/verustcode/internal/model"
	"github.com/verustcode/verustcode/pkg/idgen"
)

// KnowledgeStore defines operations for the KnowledgeSource aggregate.
type KnowledgeStore interface {
	// Upsert implements §4.9's ingest rule: look up by (tenantId,
	// contentHash) first — identical bytes are a no-op — else by the
	// logical identity (tenantId, type, provider, providerId) and replace
	// the content in place.
	Upsert(source *model.KnowledgeSource) (*model.KnowledgeSource, created bool, err error)

	ListByType(tenantID string, sourceType model.KnowledgeSourceType) ([]model.KnowledgeSource, error)
}

type knowledgeStore struct {
	db *gorm.DB
}

func newKnowledgeStore(db *gorm.DB) KnowledgeStore {
	return &knowledgeStore{db: db}
}

func (s *knowledgeStore) Upsert(source *model.KnowledgeSource) (*model.KnowledgeSource, bool, error) {
	var existing model.KnowledgeSource
	err := s.db.Where("tenant_id = ? AND content_hash = ?", source.TenantID, source.ContentHash).
		First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, err
	}

	err = s.db.Where("tenant_id = ? AND type = ? AND provider = ? AND provider_id = ?",
		source.TenantID, source.Type, source.Provider, source.ProviderID).First(&existing).Error
	if err == nil {
		existing.Title = source.Title
		existing.SourceURL = source.SourceURL
		existing.ContentText = source.ContentText
		existing.ContentHash = source.ContentHash
		existing.Metadata = source.Metadata
		existing.FeatureTokens = source.FeatureTokens
		if err := s.db.Save(&existing).Error; err != nil {
			return nil, false, err
		}
		return &existing, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, err
	}

	if source.ID == "" {
		source.ID = idgen.NewKnowledgeSourceID()
	}
	if err := s.db.Create(source).Error; err != nil {
		return nil, false, err
	}
	return source, true, nil
}

func (s *knowledgeStore) ListByType(tenantID string, sourceType model.KnowledgeSourceType) ([]model.KnowledgeSource, error) {
	var sources []model.KnowledgeSource
	err := s.db.Where("tenant_id = ? AND type = ?", tenantID, sourceType).Find(&sources).Error
	return sources, err
}
