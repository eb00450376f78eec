package model

import (
	"time"

	"gorm.io/gorm"
)

// KnowledgeSourceType distinguishes a merged-MR precedent from an ingested
// repository document.
type KnowledgeSourceType string

const (
	KnowledgeSourceTypeGoldMR KnowledgeSourceType = "GOLD_MR"
	KnowledgeSourceTypeDoc    KnowledgeSourceType = "DOC"
)

// KnowledgeSource is a promoted precedent or ingested doc whose tokenized
// signature feeds the precedent matcher (C2). Unique on (tenantId,
// contentHash) so re-ingesting identical bytes is a no-op; the logical
// identity for lookup-before-create is (tenantId, type, provider,
// providerId).
type KnowledgeSource struct {
	ID        string         `gorm:"primarykey;size:20" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	TenantID string               `gorm:"size:20;not null;uniqueIndex:idx_knowledge_tenant_hash,priority:1;index:idx_knowledge_logical,priority:1" json:"tenant_id"`
	Type     KnowledgeSourceType  `gorm:"size:20;not null;index:idx_knowledge_logical,priority:2" json:"type"`
	Provider string               `gorm:"size:50;not null;index:idx_knowledge_logical,priority:3" json:"provider"`
	ProviderID string             `gorm:"size:255;not null;index:idx_knowledge_logical,priority:4" json:"provider_id"`

	Title     string `gorm:"size:1024" json:"title"`
	SourceURL string `gorm:"size:1024" json:"source_url"`

	ContentText string `gorm:"type:text;not null" json:"content_text"`
	ContentHash string `gorm:"size:64;not null;uniqueIndex:idx_knowledge_tenant_hash,priority:2" json:"content_hash"`

	Metadata JSONMap `gorm:"type:json" json:"metadata,omitempty"`

	// FeatureTokens is the top-30 normalized token signature C2 matches
	// against; persisted so matching never re-tokenizes content at query
	// time.
	FeatureTokens StringArray `gorm:"type:json" json:"feature_tokens,omitempty"`
}
