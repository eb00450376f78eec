package checkengine

import (
	"context"
	"regexp"
)

var (
	secretPattern = regexp.MustCompile(`(?i)(api[_-]?key|secret|password|passwd|token)\s*[:=]\s*['"][^'"\s]{8,}['"]`)
	tlsSkipVerify = regexp.MustCompile(`InsecureSkipVerify\s*:?\s*true|rejectUnauthorized\s*:\s*false`)
	sqlConcat     = regexp.MustCompile(`(?i)(select|insert|update|delete)\b[^"']*["'][^"']*["']\s*\+|fmt\.Sprintf\(\s*["'](?i)(select|insert|update|delete)\b`)
	evalExec      = regexp.MustCompile(`\beval\s*\(|exec\.Command\s*\(`)
)

func securityChecks() []CheckDefinition {
	return []CheckDefinition{
		{
			Key:             "security-hardcoded-secret",
			Title:           "Hardcoded secret or credential",
			Category:        CategorySecurity,
			DefaultSeverity: SeverityBlocker,
			Rationale:       "Credentials committed to source are exposed to anyone with repo access.",
			Run: func(ctx context.Context, rc *RunContext, thresholds map[string]interface{}) Result {
				for _, f := range rc.Changes {
					for _, l := range ParseAddedLines(f.Diff) {
						if secretPattern.MatchString(l.Text) {
							return Result{
								Status:    StatusFail,
								Message:   "added line looks like a hardcoded credential",
								FilePath:  f.Path,
								LineStart: l.Line,
								LineEnd:   l.Line,
							}
						}
					}
				}
				return Result{Status: StatusPass, Message: "no hardcoded credentials detected"}
			},
		},
		{
			Key:             "security-tls-verify-disabled",
			Title:           "TLS certificate verification disabled",
			Category:        CategorySecurity,
			DefaultSeverity: SeverityBlocker,
			Rationale:       "Disabling certificate verification allows man-in-the-middle interception.",
			Run: func(ctx context.Context, rc *RunContext, thresholds map[string]interface{}) Result {
				for _, f := range rc.Changes {
					for _, l := range ParseAddedLines(f.Diff) {
						if tlsSkipVerify.MatchString(l.Text) {
							return Result{
								Status:    StatusFail,
								Message:   "TLS verification explicitly disabled",
								FilePath:  f.Path,
								LineStart: l.Line,
								LineEnd:   l.Line,
							}
						}
					}
				}
				return Result{Status: StatusPass, Message: "no disabled TLS verification found"}
			},
		},
		{
			Key:             "security-sql-string-concat",
			Title:           "SQL built via string concatenation",
			Category:        CategorySecurity,
			DefaultSeverity: SeverityWarn,
			Rationale:       "Concatenated SQL is a common path to injection; prefer parameterized queries.",
			Run: func(ctx context.Context, rc *RunContext, thresholds map[string]interface{}) Result {
				for _, f := range rc.Changes {
					for _, l := range ParseAddedLines(f.Diff) {
						if sqlConcat.MatchString(l.Text) {
							return Result{
								Status:    StatusWarn,
								Message:   "query text appears to be concatenated rather than parameterized",
								FilePath:  f.Path,
								LineStart: l.Line,
								LineEnd:   l.Line,
							}
						}
					}
				}
				return Result{Status: StatusPass, Message: "no concatenated SQL detected"}
			},
		},
		{
			Key:             "security-eval-exec-untrusted",
			Title:           "eval or subprocess exec of untrusted input",
			Category:        CategorySecurity,
			DefaultSeverity: SeverityWarn,
			Rationale:       "Executing dynamic code or shelling out to untrusted input risks command injection.",
			Run: func(ctx context.Context, rc *RunContext, thresholds map[string]interface{}) Result {
				for _, f := range rc.Changes {
					for _, l := range ParseAddedLines(f.Diff) {
						if evalExec.MatchString(l.Text) {
							return Result{
								Status:    StatusWarn,
								Message:   "dynamic eval/exec call added; verify input is trusted",
								FilePath:  f.Path,
								LineStart: l.Line,
								LineEnd:   l.Line,
							}
						}
					}
				}
				return Result{Status: StatusPass, Message: "no eval/exec of untrusted input detected"}
			},
		},
	}
}
