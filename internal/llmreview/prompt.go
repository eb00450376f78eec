package llmreview

import (
	"fmt"
	"strings"
)

// responseSchemaPrompt is appended to every prompt so the model knows the
// exact JSON shape GenerateOutput expects, mirroring the teacher's
// BuildSchemaPrompt/ResponseSchema approach but fixed to this one schema
// rather than generated via reflection, since llmreview only ever asks for
// one shape of answer.
const responseSchemaPrompt = `

## Output Format

Respond with a single JSON object matching exactly this shape, and nothing else:

` + "```json" + `
{
  "suggestions": [
    {
      "checkKey": "string",
      "severity": "BLOCKER|WARN|INFO",
      "title": "string",
      "rationale": "string",
      "suggestedFix": "string",
      "files": [{"path": "string", "lineStart": 0, "lineEnd": 0}],
      "precedentRefs": ["string"]
    }
  ]
}
` + "```" + `

Return valid JSON only, with no text before or after the object. If a field
doesn't apply, omit it rather than inventing a value.
`

// BuildPrompt renders in into the prompt text sent to the model. It never
// includes raw diff content — only the redacted snippets C3 already
// selected.
func BuildPrompt(in GenerateInput) string {
	var b strings.Builder

	b.WriteString("You are reviewing a merge request and must propose fixes for the checks that failed or warned.\n\n")

	if in.MR.Title != "" {
		fmt.Fprintf(&b, "## Merge request\n\nTitle: %s\n", in.MR.Title)
		if in.MR.Description != "" {
			fmt.Fprintf(&b, "Description: %s\n", in.MR.Description)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Check results\n\n")
	for _, c := range in.CheckResults {
		fmt.Fprintf(&b, "- [%s] %s (%s/%s): %s", c.Severity, c.CheckKey, c.Category, c.Status, c.Message)
		if c.FilePath != "" {
			fmt.Fprintf(&b, " (%s)", c.FilePath)
		}
		b.WriteString("\n")
	}

	if len(in.Precedents) > 0 {
		b.WriteString("\n## Related precedents\n\n")
		for _, p := range in.Precedents {
			fmt.Fprintf(&b, "- %s: %s (similarity %.2f)\n", p.ID, p.Title, p.Jaccard)
		}
	}

	if len(in.Snippets) > 0 {
		b.WriteString("\n## Code snippets\n\n")
		for _, s := range in.Snippets {
			fmt.Fprintf(&b, "### %s (lines %d-%d)\n```\n%s\n```\n\n", s.Path, s.LineStart, s.LineEnd, s.Content)
		}
	}

	b.WriteString(responseSchemaPrompt)

	return b.String()
}
