package checkengine

import (
	"context"
	"regexp"
	"strings"
)

var (
	todoPattern       = regexp.MustCompile(`(?i)\b(TODO|FIXME)\b`)
	ticketRefPattern  = regexp.MustCompile(`#\d+|[A-Z]{2,}-\d+`)
	commentedCodeLine = regexp.MustCompile(`^\s*//.*[;{}=]`)
)

func codeQualityChecks() []CheckDefinition {
	return []CheckDefinition{
		{
			Key:             "quality-oversized-hunk",
			Title:           "Oversized change in a single file",
			Category:        CategoryCodeQuality,
			DefaultSeverity: SeverityWarn,
			Rationale:       "Large single-file hunks are harder to review carefully; consider splitting.",
			Run: func(ctx context.Context, rc *RunContext, thresholds map[string]interface{}) Result {
				limit := thresholdInt(thresholds, "maxAddedLinesPerFile", 150)
				for _, f := range rc.Changes {
					added := ParseAddedLines(f.Diff)
					if len(added) > limit {
						return Result{
							Status:   StatusWarn,
							Message:  "file has an unusually large number of added lines in one change",
							FilePath: f.Path,
						}
					}
				}
				return Result{Status: StatusPass, Message: "no oversized hunks found"}
			},
		},
		{
			Key:             "quality-todo-without-ticket",
			Title:           "TODO/FIXME without a ticket reference",
			Category:        CategoryCodeQuality,
			DefaultSeverity: SeverityWarn,
			Rationale:       "Unreferenced TODOs get lost; link them to a tracked issue.",
			Run: func(ctx context.Context, rc *RunContext, thresholds map[string]interface{}) Result {
				for _, f := range rc.Changes {
					for _, l := range ParseAddedLines(f.Diff) {
						if todoPattern.MatchString(l.Text) && !ticketRefPattern.MatchString(l.Text) {
							return Result{
								Status:    StatusWarn,
								Message:   "TODO/FIXME added with no ticket reference",
								FilePath:  f.Path,
								LineStart: l.Line,
								LineEnd:   l.Line,
							}
						}
					}
				}
				return Result{Status: StatusPass, Message: "no unreferenced TODOs found"}
			},
		},
		{
			Key:             "quality-commented-out-code",
			Title:           "Commented-out code block",
			Category:        CategoryCodeQuality,
			DefaultSeverity: SeverityWarn,
			Rationale:       "Dead commented-out code accumulates noise; delete it or explain why it's kept.",
			Run: func(ctx context.Context, rc *RunContext, thresholds map[string]interface{}) Result {
				minRun := thresholdInt(thresholds, "minCommentedLines", 3)
				for _, f := range rc.Changes {
					run := 0
					var runStart int
					for _, l := range ParseAddedLines(f.Diff) {
						if commentedCodeLine.MatchString(l.Text) && !strings.Contains(strings.ToLower(l.Text), "nolint") {
							if run == 0 {
								runStart = l.Line
							}
							run++
							if run >= minRun {
								return Result{
									Status:    StatusWarn,
									Message:   "commented-out code block added",
									FilePath:  f.Path,
									LineStart: runStart,
									LineEnd:   l.Line,
								}
							}
						} else {
							run = 0
						}
					}
				}
				return Result{Status: StatusPass, Message: "no commented-out code blocks found"}
			},
		},
	}
}
