package model

import (
	"time"

	"gorm.io/gorm"
)

// PostedCommentType is fixed to SUMMARY for now; kept as a typed column so a
// future comment kind doesn't require a schema change.
type PostedCommentType string

const (
	PostedCommentTypeSummary PostedCommentType = "SUMMARY"
)

// PostedComment records the single idempotent summary note the orchestrator
// creates or updates on an MR. At most one row with type=SUMMARY exists per
// reviewRunId.
type PostedComment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	TenantID    string            `gorm:"size:20;not null;index" json:"tenant_id"`
	ReviewRunID string            `gorm:"size:20;not null;uniqueIndex:idx_comment_run_type,priority:1;index" json:"review_run_id"`
	Provider    string            `gorm:"size:50;not null" json:"provider"`
	ProviderID  string            `gorm:"size:255;not null" json:"provider_id"`
	Type        PostedCommentType `gorm:"size:20;not null;default:SUMMARY;uniqueIndex:idx_comment_run_type,priority:2" json:"type"`

	Body string `gorm:"type:text;not null" json:"body"`

	// BodyHash and AiSummaryHash let the orchestrator skip a no-op update
	// when re-running against an unchanged rendered body. BodyHash covers the
	// whole rendered comment (the skip-guard spec §4.8 step 11 actually
	// needs); AiSummaryHash covers only the AI suggestions section, per the
	// literal step 11 definition.
	AiIncluded    bool   `gorm:"default:false" json:"ai_included"`
	BodyHash      string `gorm:"size:64" json:"body_hash,omitempty"`
	AiSummaryHash string `gorm:"size:64" json:"ai_summary_hash,omitempty"`
}
