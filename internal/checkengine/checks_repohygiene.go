package checkengine

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	conflictMarker    = regexp.MustCompile(`^(<{7}|={7}|>{7})`)
	trailingWhitespace = regexp.MustCompile(`[ \t]+$`)
	envFilePattern    = regexp.MustCompile(`(^|/)\.env(\.[a-zA-Z0-9_-]+)?$`)
)

func repoHygieneChecks() []CheckDefinition {
	return []CheckDefinition{
		{
			Key:             "hygiene-conflict-markers",
			Title:           "Unresolved merge conflict markers",
			Category:        CategoryRepoHygiene,
			DefaultSeverity: SeverityBlocker,
			Rationale:       "Conflict markers left in committed code break compilation and indicate an unresolved merge.",
			Run: func(ctx context.Context, rc *RunContext, thresholds map[string]interface{}) Result {
				for _, f := range rc.Changes {
					for _, l := range ParseAddedLines(f.Diff) {
						if conflictMarker.MatchString(l.Text) {
							return Result{
								Status:    StatusFail,
								Message:   "unresolved merge conflict marker committed",
								FilePath:  f.Path,
								LineStart: l.Line,
								LineEnd:   l.Line,
							}
						}
					}
				}
				return Result{Status: StatusPass, Message: "no conflict markers found"}
			},
		},
		{
			Key:             "hygiene-trailing-whitespace",
			Title:           "Trailing whitespace",
			Category:        CategoryRepoHygiene,
			DefaultSeverity: SeverityWarn,
			Rationale:       "Trailing whitespace creates noisy diffs and is usually an editor artifact.",
			Run: func(ctx context.Context, rc *RunContext, thresholds map[string]interface{}) Result {
				for _, f := range rc.Changes {
					for _, l := range ParseAddedLines(f.Diff) {
						if trailingWhitespace.MatchString(l.Text) {
							return Result{
								Status:    StatusWarn,
								Message:   "added line has trailing whitespace",
								FilePath:  f.Path,
								LineStart: l.Line,
								LineEnd:   l.Line,
							}
						}
					}
				}
				return Result{Status: StatusPass, Message: "no trailing whitespace found"}
			},
		},
		{
			Key:             "hygiene-committed-env-file",
			Title:           "Environment file committed",
			Category:        CategoryRepoHygiene,
			DefaultSeverity: SeverityBlocker,
			Rationale:       ".env files typically hold secrets and should never be committed.",
			Run: func(ctx context.Context, rc *RunContext, thresholds map[string]interface{}) Result {
				for _, f := range rc.Changes {
					if envFilePattern.MatchString(strings.ToLower(filepath.Base(f.Path))) {
						return Result{
							Status:   StatusFail,
							Message:  "an .env-shaped file was committed",
							FilePath: f.Path,
						}
					}
				}
				return Result{Status: StatusPass, Message: "no .env-shaped files committed"}
			},
		},
	}
}
