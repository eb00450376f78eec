// Package llmreview generates AI fix suggestions for failing or warned
// checks. It never sees a raw diff — only the redacted snippets C3 selected
// — and always returns suggestions with a normalized, non-empty
// suggestedFix.
package llmreview

import "github.com/verustcode/verustcode/internal/checkengine"

// CheckResultInput is the subset of a check result the prompt needs.
type CheckResultInput struct {
	CheckKey string
	Category checkengine.Category
	Status   checkengine.Status
	Severity checkengine.Severity
	Message  string
	FilePath string
}

// PrecedentInput is a matched GOLD precedent surfaced to the model as
// supporting context.
type PrecedentInput struct {
	ID      string
	Title   string
	Jaccard float64
}

// SnippetInput is a redacted code window from C3.
type SnippetInput struct {
	Path      string
	Content   string
	LineStart int
	LineEnd   int
}

// MRContext is the merge request metadata shown to the model.
type MRContext struct {
	Title       string
	Description string
}

// GenerateInput is the full payload for one suggestion-generation call.
type GenerateInput struct {
	CheckResults    []CheckResultInput
	Precedents      []PrecedentInput
	MR              MRContext
	Snippets        []SnippetInput
	RedactionReport RedactionSummary
}

// RedactionSummary mirrors privacy.RedactionReport without importing that
// package directly, keeping llmreview decoupled from the privacy filter's
// internals.
type RedactionSummary struct {
	FilesRedacted     int
	TotalLinesRemoved int
}

// SuggestionFile references a file/line range a suggestion applies to.
type SuggestionFile struct {
	Path      string `json:"path"`
	LineStart int    `json:"lineStart,omitempty"`
	LineEnd   int    `json:"lineEnd,omitempty"`
}

// Suggestion is one LLM-generated fix recommendation, shaped to map
// directly onto model.AiSuggestion.
type Suggestion struct {
	CheckKey      string           `json:"checkKey"`
	Severity      string           `json:"severity"`
	Title         string           `json:"title"`
	Rationale     string           `json:"rationale"`
	SuggestedFix  string           `json:"suggestedFix"`
	Files         []SuggestionFile `json:"files"`
	PrecedentRefs []string         `json:"precedentRefs,omitempty"`
}

// GenerateOutput is the parsed, normalized result of one suggestion call.
type GenerateOutput struct {
	Suggestions []Suggestion `json:"suggestions"`
}
