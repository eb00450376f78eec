package model

import (
	"time"

	"gorm.io/gorm"
)

// CheckCategory is the fixed taxonomy the scoring weights are keyed by.
type CheckCategory string

const (
	CategorySecurity      CheckCategory = "SECURITY"
	CategoryCodeQuality   CheckCategory = "CODE_QUALITY"
	CategoryArchitecture  CheckCategory = "ARCHITECTURE"
	CategoryPerformance   CheckCategory = "PERFORMANCE"
	CategoryTesting       CheckCategory = "TESTING"
	CategoryObservability CheckCategory = "OBSERVABILITY"
	CategoryRepoHygiene   CheckCategory = "REPO_HYGIENE"
)

// CheckStatus is a single check's verdict.
type CheckStatus string

const (
	CheckStatusPass CheckStatus = "PASS"
	CheckStatusWarn CheckStatus = "WARN"
	CheckStatusFail CheckStatus = "FAIL"
)

// CheckSeverity is derived from status, never set independently by a check.
type CheckSeverity string

const (
	SeverityBlocker CheckSeverity = "BLOCKER"
	SeverityWarn    CheckSeverity = "WARN"
	SeverityInfo    CheckSeverity = "INFO"
)

// ReviewCheckResult is created once per (reviewRunId, checkKey); its mere
// presence for a run is the worker's "checks already executed" marker.
type ReviewCheckResult struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	TenantID    string `gorm:"size:20;not null;index" json:"tenant_id"`
	ReviewRunID string `gorm:"size:20;not null;uniqueIndex:idx_checkresult_run_key,priority:1;index" json:"review_run_id"`
	CheckKey    string `gorm:"size:255;not null;uniqueIndex:idx_checkresult_run_key,priority:2" json:"check_key"`

	Category CheckCategory `gorm:"size:50;not null;index" json:"category"`
	Status   CheckStatus   `gorm:"size:20;not null" json:"status"`
	Severity CheckSeverity `gorm:"size:20;not null" json:"severity"`
	Message  string        `gorm:"type:text" json:"message"`

	FilePath  string `gorm:"size:1024" json:"file_path,omitempty"`
	LineStart int    `json:"line_start,omitempty"`
	LineEnd   int    `json:"line_end,omitempty"`

	Evidence JSONMap `gorm:"type:json" json:"evidence,omitempty"`
}
