package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// AiSuggestionFile references a file/line range an LLM suggestion applies
// to, without re-embedding any diff content.
type AiSuggestionFile struct {
	Path      string `json:"path"`
	LineStart int    `json:"line_start,omitempty"`
	LineEnd   int    `json:"line_end,omitempty"`
}

// AiSuggestionFiles is the JSON-in-SQLite column type for a suggestion's
// file references, following the same Valuer/Scanner idiom as StringArray.
type AiSuggestionFiles []AiSuggestionFile

// Value implements driver.Valuer interface
func (f AiSuggestionFiles) Value() (driver.Value, error) {
	if len(f) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(f)
	return string(data), err
}

// Scan implements sql.Scanner interface
func (f *AiSuggestionFiles) Scan(value interface{}) error {
	if value == nil {
		*f = []AiSuggestionFile{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	}
	return json.Unmarshal(bytes, f)
}

// AiSuggestion is an LLM-generated fix recommendation attached to a failing
// or warned check. SuggestedFix is always a string after C4 normalization.
type AiSuggestion struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	TenantID    string `gorm:"size:20;not null;index" json:"tenant_id"`
	ReviewRunID string `gorm:"size:20;not null;index" json:"review_run_id"`
	CheckKey    string `gorm:"size:255;not null" json:"check_key"`

	Severity     CheckSeverity `gorm:"size:20;not null" json:"severity"`
	Title        string        `gorm:"size:512;not null" json:"title"`
	Rationale    string        `gorm:"type:text" json:"rationale"`
	SuggestedFix string        `gorm:"type:text;not null" json:"suggested_fix"`

	Files AiSuggestionFiles `gorm:"type:json" json:"files,omitempty"`

	// PrecedentRefs stores the ids of KnowledgeSource rows the model was
	// shown as supporting precedent, if any.
	PrecedentRefs StringArray `gorm:"type:json" json:"precedent_refs,omitempty"`
}
