package llmreview

import (
	"encoding/json"
	"fmt"
	"strings"
)

// rawSuggestion mirrors Suggestion but allows suggestedFix to arrive as
// either a string or an array of strings, since models inconsistently
// return one or the other for multi-step fixes.
type rawSuggestion struct {
	CheckKey      string           `json:"checkKey"`
	Severity      string           `json:"severity"`
	Title         string           `json:"title"`
	Rationale     string           `json:"rationale"`
	SuggestedFix  json.RawMessage  `json:"suggestedFix"`
	Files         []SuggestionFile `json:"files"`
	PrecedentRefs []string         `json:"precedentRefs"`
}

type rawOutput struct {
	Suggestions []rawSuggestion `json:"suggestions"`
}

// ParseResponse extracts the JSON object from content and normalizes it into
// a GenerateOutput: suggestedFix is always a non-empty string afterward.
func ParseResponse(content string) (*GenerateOutput, error) {
	jsonStr, err := ExtractJSON(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	var raw rawOutput
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	out := &GenerateOutput{Suggestions: make([]Suggestion, 0, len(raw.Suggestions))}
	for _, r := range raw.Suggestions {
		out.Suggestions = append(out.Suggestions, Suggestion{
			CheckKey:      r.CheckKey,
			Severity:      r.Severity,
			Title:         r.Title,
			Rationale:     r.Rationale,
			SuggestedFix:  normalizeSuggestedFix(r.SuggestedFix),
			Files:         r.Files,
			PrecedentRefs: r.PrecedentRefs,
		})
	}
	return out, nil
}

// normalizeSuggestedFix implements spec §4.4's suggestedFix rule: a string
// passes through; an array of strings is joined with newlines and each
// entry bullet-prefixed; an empty array becomes the fixed fallback message.
func normalizeSuggestedFix(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "No fix suggestion provided."
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if strings.TrimSpace(asString) == "" {
			return "No fix suggestion provided."
		}
		return asString
	}

	var asSlice []string
	if err := json.Unmarshal(raw, &asSlice); err == nil {
		if len(asSlice) == 0 {
			return "No fix suggestion provided."
		}
		lines := make([]string, 0, len(asSlice))
		for _, s := range asSlice {
			lines = append(lines, "- "+s)
		}
		return strings.Join(lines, "\n")
	}

	return "No fix suggestion provided."
}

// ExtractJSON returns the outermost JSON object or array literal found in
// content, tolerating leading/trailing prose the model may have added
// despite being asked not to.
func ExtractJSON(content string) (string, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end <= start {
		start = strings.Index(content, "[")
		end = strings.LastIndex(content, "]")
		if start == -1 || end == -1 || end <= start {
			return "", fmt.Errorf("no JSON object found in response")
		}
	}
	return content[start : end+1], nil
}
