package checkengine

import (
	"context"
	"path/filepath"
	"strings"
)

var testFileSuffixes = []string{"_test.go", ".test.ts", ".test.tsx", ".test.js", ".spec.ts", ".spec.tsx", ".spec.js"}

func isTestFile(path string) bool {
	for _, suffix := range testFileSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// correspondingTestBase returns the filename stem a source file and its test
// file share, e.g. "internal/store/tenant.go" and
// "internal/store/tenant_test.go" -> "tenant".
func correspondingTestBase(path string) string {
	base := filepath.Base(path)
	for _, suffix := range testFileSuffixes {
		if strings.HasSuffix(base, suffix) {
			return strings.TrimSuffix(base, suffix)
		}
	}
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext)
}

func testingChecks() []CheckDefinition {
	return []CheckDefinition{
		{
			Key:             "testing-missing-test-file",
			Title:           "Source file changed with no corresponding test touched",
			Category:        CategoryTesting,
			DefaultSeverity: SeverityWarn,
			Rationale:       "Changing behavior without touching its test file is a common way regressions slip through.",
			Run: func(ctx context.Context, rc *RunContext, thresholds map[string]interface{}) Result {
				touchedTestBases := map[string]bool{}
				var sourceFiles []string

				for _, f := range rc.Changes {
					if isTestFile(f.Path) {
						touchedTestBases[correspondingTestBase(f.Path)] = true
						continue
					}
					if isSourceFile(f.Path) {
						sourceFiles = append(sourceFiles, f.Path)
					}
				}

				for _, path := range sourceFiles {
					if !touchedTestBases[correspondingTestBase(path)] {
						return Result{
							Status:   StatusWarn,
							Message:  "source file changed with no corresponding test file touched in this diff",
							FilePath: path,
						}
					}
				}

				return Result{Status: StatusPass, Message: "every changed source file has a corresponding test touched"}
			},
		},
	}
}

var sourceExtensions = []string{".go", ".ts", ".tsx", ".js", ".jsx"}

func isSourceFile(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range sourceExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
