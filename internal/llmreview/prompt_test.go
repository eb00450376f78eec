package llmreview

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verustcode/verustcode/internal/checkengine"
)

func TestBuildPrompt_NeverIncludesDiffOnlySnippets(t *testing.T) {
	in := GenerateInput{
		MR: MRContext{Title: "Fix retry logic"},
		CheckResults: []CheckResultInput{
			{CheckKey: "security-hardcoded-secret", Category: checkengine.CategorySecurity, Status: checkengine.StatusFail, Severity: checkengine.SeverityBlocker, Message: "hardcoded secret found", FilePath: "config.go"},
		},
		Snippets: []SnippetInput{
			{Path: "config.go", Content: "const apiKey = \"REDACTED\"", LineStart: 1, LineEnd: 1},
		},
	}

	prompt := BuildPrompt(in)
	assert.Contains(t, prompt, "security-hardcoded-secret")
	assert.Contains(t, prompt, "REDACTED")
	assert.Contains(t, prompt, "Fix retry logic")
	assert.Contains(t, prompt, "suggestedFix")
}

func TestBuildPrompt_OmitsEmptySections(t *testing.T) {
	prompt := BuildPrompt(GenerateInput{})
	assert.NotContains(t, prompt, "## Related precedents")
	assert.NotContains(t, prompt, "## Code snippets")
}
