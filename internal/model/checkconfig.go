package model

import "time"

// CheckConfig is a per-tenant overlay over the built-in check registry,
// keyed by checkKey. A disabled check is skipped entirely by C1;
// SeverityOverride, if set, replaces the computed status; Thresholds is an
// opaque map passed through to the check's run function unchanged.
type CheckConfig struct {
	ID uint `gorm:"primarykey" json:"id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TenantID string `gorm:"size:20;not null;uniqueIndex:idx_checkconfig_tenant_key,priority:1" json:"tenant_id"`
	CheckKey string `gorm:"size:255;not null;uniqueIndex:idx_checkconfig_tenant_key,priority:2" json:"check_key"`

	Enabled          bool    `gorm:"default:true;not null" json:"enabled"`
	SeverityOverride string  `gorm:"size:20" json:"severity_override,omitempty"`
	Thresholds       JSONMap `gorm:"type:json" json:"thresholds,omitempty"`
}

// RepositoryCheckConfig layers a repository-scoped override on top of the
// tenant-wide CheckConfig, same precedence order the teacher used for
// .verust-review.yaml vs. database config: repository overlay wins over
// tenant overlay, which wins over the built-in default.
type RepositoryCheckConfig struct {
	ID uint `gorm:"primarykey" json:"id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TenantID     string `gorm:"size:20;not null;uniqueIndex:idx_repocheckconfig_repo_key,priority:1" json:"tenant_id"`
	RepositoryID string `gorm:"size:20;not null;uniqueIndex:idx_repocheckconfig_repo_key,priority:2" json:"repository_id"`
	CheckKey     string `gorm:"size:255;not null;uniqueIndex:idx_repocheckconfig_repo_key,priority:3" json:"check_key"`

	Enabled          bool    `gorm:"default:true;not null" json:"enabled"`
	SeverityOverride string  `gorm:"size:20" json:"severity_override,omitempty"`
	Thresholds       JSONMap `gorm:"type:json" json:"thresholds,omitempty"`
}
