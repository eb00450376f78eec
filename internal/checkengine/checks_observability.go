package checkengine

import (
	"context"
	"regexp"
)

var (
	exportedFuncPattern = regexp.MustCompile(`^func\s+(\([^)]*\)\s*)?[A-Z]\w*\s*\(`)
	loggingCallPattern  = regexp.MustCompile(`\blogger\.|\bzap\.|\.Info\(|\.Warn\(|\.Error\(|metrics\.|\.Inc\(\)|\.Observe\(`)
)

func observabilityChecks() []CheckDefinition {
	return []CheckDefinition{
		{
			Key:             "observability-exported-func-no-logging",
			Title:           "Exported function/handler added without nearby logging",
			Category:        CategoryObservability,
			DefaultSeverity: SeverityInfo,
			Rationale:       "An exported entrypoint with zero logging is hard to observe in production when something goes wrong.",
			Run: func(ctx context.Context, rc *RunContext, thresholds map[string]interface{}) Result {
				window := thresholdInt(thresholds, "logLookaheadLines", 15)
				for _, f := range rc.Changes {
					added := ParseAddedLines(f.Diff)
					for i, l := range added {
						if !exportedFuncPattern.MatchString(l.Text) {
							continue
						}
						end := i + window
						if end > len(added) {
							end = len(added)
						}
						found := false
						for _, inner := range added[i:end] {
							if loggingCallPattern.MatchString(inner.Text) {
								found = true
								break
							}
						}
						if !found {
							return Result{
								Status:    StatusWarn,
								Message:   "exported function added with no nearby log or metric call",
								FilePath:  f.Path,
								LineStart: l.Line,
								LineEnd:   l.Line,
							}
						}
					}
				}
				return Result{Status: StatusPass, Message: "exported functions have nearby logging or metrics"}
			},
		},
	}
}
