package model

import (
	"time"

	"gorm.io/gorm"
)

// MergeRequestState tracks the code-host's own MR lifecycle state, not the
// review state (that's ReviewRun.Status).
type MergeRequestState string

const (
	MergeRequestStateOpened MergeRequestState = "opened"
	MergeRequestStateMerged MergeRequestState = "merged"
	MergeRequestStateClosed MergeRequestState = "closed"
)

// MergeRequest is a single MR/PR tracked under a repository. Unique on
// (tenantId, repositoryId, iid).
type MergeRequest struct {
	ID        string         `gorm:"primarykey;size:20" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	TenantID     string `gorm:"size:20;not null;uniqueIndex:idx_mr_tenant_repo_iid,priority:1;index:idx_mr_tenant_created,priority:1" json:"tenant_id"`
	RepositoryID string `gorm:"size:20;not null;uniqueIndex:idx_mr_tenant_repo_iid,priority:2;index" json:"repository_id"`

	// IID is the provider-assigned integer identifier (GitLab's MR "internal
	// id", scoped to the project), distinct from any global numeric id.
	IID int `gorm:"not null;uniqueIndex:idx_mr_tenant_repo_iid,priority:3" json:"iid"`

	Title        string            `gorm:"size:1024;not null" json:"title"`
	Author       string            `gorm:"size:255" json:"author"`
	SourceBranch string            `gorm:"size:255" json:"source_branch"`
	TargetBranch string            `gorm:"size:255" json:"target_branch"`
	State        MergeRequestState `gorm:"size:50;not null;default:opened;index" json:"state"`
	WebURL       string            `gorm:"size:1024" json:"web_url"`

	// LastSeenSha is the head commit sha from the most recently processed
	// webhook event; used by intake's dedup decision.
	LastSeenSha string `gorm:"size:64" json:"last_seen_sha"`
}
