package checkengine

import (
	"context"
	"regexp"
)

var (
	loopPattern      = regexp.MustCompile(`^\s*for\b`)
	queryCallPattern = regexp.MustCompile(`\.(Find|First|Get|Query|QueryRow|Exec)\s*\(`)
	appendPattern    = regexp.MustCompile(`\bappend\s*\(`)
	boundGuard       = regexp.MustCompile(`\bbreak\b|len\s*\([^)]*\)\s*[<>]=?`)
)

func performanceChecks() []CheckDefinition {
	return []CheckDefinition{
		{
			Key:             "performance-n-plus-one-heuristic",
			Title:           "Possible N+1 query inside a loop",
			Category:        CategoryPerformance,
			DefaultSeverity: SeverityWarn,
			Rationale:       "A query-shaped call inside a loop body usually means one round trip per iteration instead of a batched fetch.",
			Run: func(ctx context.Context, rc *RunContext, thresholds map[string]interface{}) Result {
				window := thresholdInt(thresholds, "loopLookaheadLines", 8)
				for _, f := range rc.Changes {
					added := ParseAddedLines(f.Diff)
					for i, l := range added {
						if !loopPattern.MatchString(l.Text) {
							continue
						}
						end := i + window
						if end > len(added) {
							end = len(added)
						}
						for _, inner := range added[i+1 : end] {
							if queryCallPattern.MatchString(inner.Text) {
								return Result{
									Status:    StatusWarn,
									Message:   "query-shaped call found inside a loop body",
									FilePath:  f.Path,
									LineStart: l.Line,
									LineEnd:   inner.Line,
								}
							}
						}
					}
				}
				return Result{Status: StatusPass, Message: "no loop-bound query calls detected"}
			},
		},
		{
			Key:             "performance-unbounded-accumulation",
			Title:           "Unbounded in-memory accumulation in a loop",
			Category:        CategoryPerformance,
			DefaultSeverity: SeverityWarn,
			Rationale:       "Appending to a slice in a loop with no visible bound or break risks unbounded memory growth on large inputs.",
			Run: func(ctx context.Context, rc *RunContext, thresholds map[string]interface{}) Result {
				window := thresholdInt(thresholds, "loopLookaheadLines", 8)
				for _, f := range rc.Changes {
					added := ParseAddedLines(f.Diff)
					for i, l := range added {
						if !loopPattern.MatchString(l.Text) {
							continue
						}
						end := i + window
						if end > len(added) {
							end = len(added)
						}
						body := added[i+1 : end]
						hasAppend, hasGuard := false, false
						var appendLine AddedLine
						for _, inner := range body {
							if appendPattern.MatchString(inner.Text) {
								hasAppend = true
								appendLine = inner
							}
							if boundGuard.MatchString(inner.Text) {
								hasGuard = true
							}
						}
						if hasAppend && !hasGuard {
							return Result{
								Status:    StatusWarn,
								Message:   "loop appends without a visible bound check or break",
								FilePath:  f.Path,
								LineStart: l.Line,
								LineEnd:   appendLine.Line,
							}
						}
					}
				}
				return Result{Status: StatusPass, Message: "no unbounded accumulation patterns detected"}
			},
		},
	}
}
