package model

import "time"

// TenantAiConfig is the per-tenant gate and tuning knobs for step 10 of the
// orchestrator (AI augmentation). A tenant with Enabled=false never reaches
// C4 regardless of the process-wide AI_ENABLED flag.
type TenantAiConfig struct {
	TenantID string `gorm:"primarykey;size:20" json:"tenant_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Enabled  bool   `gorm:"default:false;not null" json:"enabled"`
	Provider string `gorm:"size:50;not null;default:anthropic" json:"provider"`
	Model    string `gorm:"size:100;not null;default:claude-3-5-sonnet-20241022" json:"model"`

	MaxSuggestions    int `gorm:"default:5;not null" json:"max_suggestions"`
	MaxPromptChars    int `gorm:"default:12000;not null" json:"max_prompt_chars"`
	MaxTotalDiffBytes int `gorm:"default:500000;not null" json:"max_total_diff_bytes"`
}
