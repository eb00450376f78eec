package model

import (
	"time"

	"gorm.io/gorm"
)

// Tenant is the top-level ownership boundary. Every other table carries its
// id and tenant-scoped uniqueness is enforced against it.
type Tenant struct {
	ID        string         `gorm:"primarykey;size:20" json:"id"` // xid
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Slug is the externally visible handle, e.g. used in the default
	// webhook path segment and in job identity strings.
	Slug string `gorm:"size:255;not null;uniqueIndex" json:"slug"`

	// WebhookSecrets maps provider name ("gitlab", "github", "gitea") to
	// the shared secret intake validates the inbound event against.
	WebhookSecrets JSONMap `gorm:"type:json" json:"-"`

	// GoldScoreThreshold and GoldMinApprovals are the tenant-configurable
	// admission rules for GOLD_MR promotion (spec §4.9): a merged MR's
	// review score must exceed the threshold, and if the provider exposes
	// approval counts, at least this many approvals must be present.
	GoldScoreThreshold int `gorm:"default:80;not null" json:"gold_score_threshold"`
	GoldMinApprovals   int `gorm:"default:1;not null" json:"gold_min_approvals"`
}

// WebhookSecretFor returns the configured secret for a provider, or "" if
// the tenant has none configured for it.
func (t *Tenant) WebhookSecretFor(provider string) string {
	if t.WebhookSecrets == nil {
		return ""
	}
	if v, ok := t.WebhookSecrets[provider]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
