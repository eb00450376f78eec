package checkengine

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
)

var importLinePattern = regexp.MustCompile(`^\s*"([^"]+)"\s*$|^\s*import\s+"([^"]+)"`)

func architectureChecks() []CheckDefinition {
	return []CheckDefinition{
		{
			Key:             "architecture-handler-bypasses-store",
			Title:           "Handler imports database package directly",
			Category:        CategoryArchitecture,
			DefaultSeverity: SeverityWarn,
			Rationale:       "HTTP handlers should go through the store layer, not the database driver directly.",
			Run: func(ctx context.Context, rc *RunContext, thresholds map[string]interface{}) Result {
				for _, f := range rc.Changes {
					if !strings.Contains(f.Path, "/handler/") {
						continue
					}
					for _, l := range ParseAddedLines(f.Diff) {
						imp := extractImportPath(l.Text)
						if imp != "" && strings.Contains(imp, "/internal/database") {
							return Result{
								Status:    StatusWarn,
								Message:   "handler imports internal/database directly, bypassing the store layer",
								FilePath:  f.Path,
								LineStart: l.Line,
								LineEnd:   l.Line,
							}
						}
					}
				}
				return Result{Status: StatusPass, Message: "no direct database imports from handlers"}
			},
		},
		{
			Key:             "architecture-self-import-heuristic",
			Title:           "Package appears to import itself",
			Category:        CategoryArchitecture,
			DefaultSeverity: SeverityWarn,
			Rationale:       "An import whose last path segment matches the importing file's own directory usually signals a refactor left a stale or circular-looking reference.",
			Run: func(ctx context.Context, rc *RunContext, thresholds map[string]interface{}) Result {
				for _, f := range rc.Changes {
					dir := filepath.Base(filepath.Dir(f.Path))
					if dir == "." || dir == "" {
						continue
					}
					for _, l := range ParseAddedLines(f.Diff) {
						imp := extractImportPath(l.Text)
						if imp == "" {
							continue
						}
						if filepath.Base(imp) == dir {
							return Result{
								Status:    StatusWarn,
								Message:   "added import's last path segment matches its own package directory",
								FilePath:  f.Path,
								LineStart: l.Line,
								LineEnd:   l.Line,
							}
						}
					}
				}
				return Result{Status: StatusPass, Message: "no circular-looking self-imports found"}
			},
		},
	}
}

func extractImportPath(line string) string {
	m := importLinePattern.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}
