package model

import (
	"time"

	"gorm.io/gorm"
)

// Repository mirrors a single code-host project, scoped to the tenant that
// owns it. Unique on (tenantId, provider, providerRepoId).
type Repository struct {
	ID        string         `gorm:"primarykey;size:20" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	TenantID string `gorm:"size:20;not null;uniqueIndex:idx_repo_tenant_provider_repoid,priority:1;index:idx_repo_tenant_created,priority:1" json:"tenant_id"`

	// Provider is "gitlab", "github" or "gitea".
	Provider string `gorm:"size:50;not null;uniqueIndex:idx_repo_tenant_provider_repoid,priority:2" json:"provider"`

	// ProviderRepoID is the code-host's own project/repo identifier
	// (GitLab numeric project id, as a string for portability).
	ProviderRepoID string `gorm:"size:255;not null;uniqueIndex:idx_repo_tenant_provider_repoid,priority:3" json:"provider_repo_id"`

	Namespace     string `gorm:"size:255;not null" json:"namespace"`
	Name          string `gorm:"size:255;not null" json:"name"`
	DefaultBranch string `gorm:"size:255" json:"default_branch"`
}
