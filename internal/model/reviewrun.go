package model

import (
	"time"

	"gorm.io/gorm"
)

// ReviewRunStatus is the worker state machine's only state variable.
type ReviewRunStatus string

const (
	ReviewRunStatusQueued    ReviewRunStatus = "QUEUED"
	ReviewRunStatusRunning   ReviewRunStatus = "RUNNING"
	ReviewRunStatusSucceeded ReviewRunStatus = "SUCCEEDED"
	ReviewRunStatusFailed    ReviewRunStatus = "FAILED"
)

// ReviewRunTriggerSource records what caused a run to be created, mirroring
// the original Review.Source/TriggeredBy columns.
type ReviewRunTriggerSource string

const (
	ReviewRunTriggerWebhook ReviewRunTriggerSource = "webhook"
	ReviewRunTriggerManual  ReviewRunTriggerSource = "manual"
)

// ReviewRun drives one review of one MR head commit through QUEUED ->
// RUNNING -> {SUCCEEDED, FAILED}. Once terminal it is immutable except for
// the retry control-API action, which resets it back to QUEUED.
type ReviewRun struct {
	ID        string         `gorm:"primarykey;size:20" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	TenantID       string `gorm:"size:20;not null;index:idx_run_tenant_created,priority:1" json:"tenant_id"`
	MergeRequestID string `gorm:"size:20;not null;index" json:"merge_request_id"`

	HeadSha         string          `gorm:"size:64;not null;index" json:"head_sha"`
	Status          ReviewRunStatus `gorm:"size:20;not null;default:QUEUED;index" json:"status"`
	Phase           string          `gorm:"size:100" json:"phase,omitempty"`
	ProgressMessage string          `gorm:"size:512" json:"progress_message,omitempty"`
	Score           *int            `json:"score,omitempty"`
	Summary         string          `gorm:"type:text" json:"summary,omitempty"`
	Error           string          `gorm:"type:text" json:"error,omitempty"`

	// TriggerSource and Attempt supplement the distilled spec, grounded in
	// the original Review.Source/RetryCount columns.
	TriggerSource ReviewRunTriggerSource `gorm:"size:20;not null;default:webhook" json:"trigger_source"`
	Attempt       int                    `gorm:"default:0;not null" json:"attempt"`

	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Relations
	CheckResults []ReviewCheckResult `gorm:"foreignKey:ReviewRunID" json:"check_results,omitempty"`
	Suggestions  []AiSuggestion      `gorm:"foreignKey:ReviewRunID" json:"suggestions,omitempty"`
}
