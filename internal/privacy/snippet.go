package privacy

import (
	"strings"

	"go.uber.org/zap"

	"github.com/verustcode/verustcode/internal/checkengine"
	"github.com/verustcode/verustcode/pkg/logger"
)

// Snippet is one redacted window of a file's added lines, ready to hand to
// the LLM adapter (C4).
type Snippet struct {
	Path      string
	Content   string
	LineStart int
	LineEnd   int
}

// FindingRef is the subset of a check result SelectSnippets needs: which
// file it's about and, if known, which added line to center the window on.
type FindingRef struct {
	CheckKey string
	FilePath string
	LineHint int
}

// SelectSnippets builds the redacted snippet set for a review: for every
// allowed file referenced by a finding, it selects a window of added lines
// centered on the finding's lineHint (or the whole file's added lines if
// smaller), redacts it, and accumulates snippets greedily until
// maxPromptChars is reached. At most one snippet is emitted per (file,
// check) pair. Files outside the allow-list are skipped and logged.
func SelectSnippets(changes []checkengine.FileChange, findings []FindingRef, maxPromptChars int) ([]Snippet, RedactionReport) {
	diffByPath := map[string]string{}
	for _, c := range changes {
		diffByPath[c.Path] = c.Diff
	}

	var snippets []Snippet
	var report RedactionReport
	seen := map[string]bool{}
	budget := maxPromptChars

	for _, f := range findings {
		if f.FilePath == "" {
			continue
		}
		key := f.CheckKey + "|" + f.FilePath
		if seen[key] {
			continue
		}

		diff, ok := diffByPath[f.FilePath]
		if !ok {
			continue
		}

		if !IsAllowed(f.FilePath) {
			logger.Info("snippet skipped: file not in allow-list", zap.String("path", f.FilePath))
			continue
		}

		added := checkengine.ParseAddedLines(diff)
		if len(added) == 0 {
			continue
		}

		window := windowAround(added, f.LineHint)
		raw := joinAddedLines(window)
		redacted, lineReport := RedactText(raw)
		report.merge(lineReport)

		if budget <= 0 {
			continue
		}
		if len(redacted) > budget {
			redacted = redacted[:budget]
		}
		budget -= len(redacted)

		seen[key] = true
		snippets = append(snippets, Snippet{
			Path:      f.FilePath,
			Content:   redacted,
			LineStart: window[0].Line,
			LineEnd:   window[len(window)-1].Line,
		})
	}

	return snippets, report
}

// windowAround selects up to 2*snippetRadius+1 added lines centered on
// lineHint. When lineHint is 0 (unknown) or the file is smaller than the
// window, it returns the whole added-line set.
func windowAround(added []checkengine.AddedLine, lineHint int) []checkengine.AddedLine {
	if lineHint <= 0 || len(added) <= 2*snippetRadius+1 {
		return added
	}

	centerIdx := 0
	for i, l := range added {
		if l.Line == lineHint {
			centerIdx = i
			break
		}
	}

	start := centerIdx - snippetRadius
	if start < 0 {
		start = 0
	}
	end := centerIdx + snippetRadius + 1
	if end > len(added) {
		end = len(added)
	}
	return added[start:end]
}

func joinAddedLines(lines []checkengine.AddedLine) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l.Text)
	}
	return b.String()
}
