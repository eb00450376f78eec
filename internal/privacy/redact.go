package privacy

import (
	"regexp"
	"strings"
)

// lineRemovalPatterns match a high-confidence secret on a line; the whole
// line is dropped rather than just the match, since the surrounding context
// on a secret-bearing line is rarely useful and often part of the secret.
var lineRemovalPatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"api_key_assignment", regexp.MustCompile(`(?i)\b(api[_-]?key|apikey|secret[_-]?key|access[_-]?key)\b\s*[:=]\s*['"]?[A-Za-z0-9_\-/+=]{12,}['"]?`)},
	{"private_key_header", regexp.MustCompile(`-----BEGIN\s+(RSA|EC|DSA|OPENSSH|PGP)?\s*PRIVATE KEY-----`)},
	{"bearer_token", regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9_\-.=]{10,}`)},
	{"jwt", regexp.MustCompile(`\beyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\b`)},
	{"password_assignment", regexp.MustCompile(`(?i)\bpassword\b\s*[:=]\s*\S+`)},
}

// inlinePatterns are redacted in place, leaving the rest of the line intact.
var inlinePatterns = []struct {
	name        string
	pattern     *regexp.Regexp
	replacement string
}{
	{"email", regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`), "[redacted-email]"},
	{"phone", regexp.MustCompile(`\b(\+?\d{1,2}[\s.\-]?)?\(?\d{3}\)?[\s.\-]\d{3}[\s.\-]\d{4}\b`), "[redacted-phone]"},
}

// RedactionReport summarizes what RedactText removed across one or more
// calls; callers accumulate it across every snippet emitted for a run.
type RedactionReport struct {
	FilesRedacted     int
	TotalLinesRemoved int
	PatternsMatched   []string
}

func (r *RedactionReport) merge(other RedactionReport) {
	r.FilesRedacted += other.FilesRedacted
	r.TotalLinesRemoved += other.TotalLinesRemoved
	r.PatternsMatched = append(r.PatternsMatched, other.PatternsMatched...)
}

// RedactText scans lines of content, dropping any line that matches a
// high-confidence secret pattern outright and replacing inline email/phone
// occurrences elsewhere with placeholders. It returns the redacted text and
// a report of what it found, suitable for merging into a run-level
// RedactionReport. RedactText is idempotent: calling it again on its own
// output is a no-op beyond re-matching already-inserted placeholders, which
// never themselves match a pattern.
func RedactText(content string) (string, RedactionReport) {
	lines := strings.Split(content, "\n")
	var kept []string
	var matched []string
	var linesRemoved int

	for _, line := range lines {
		if name, hit := matchesLineRemoval(line); hit {
			matched = append(matched, name)
			linesRemoved++
			continue
		}
		kept = append(kept, redactInline(line, &matched))
	}

	report := RedactionReport{
		TotalLinesRemoved: linesRemoved,
		PatternsMatched:   dedupStrings(matched),
	}
	if linesRemoved > 0 || len(report.PatternsMatched) > 0 {
		report.FilesRedacted = 1
	}
	return strings.Join(kept, "\n"), report
}

func matchesLineRemoval(line string) (string, bool) {
	for _, p := range lineRemovalPatterns {
		if p.pattern.MatchString(line) {
			return p.name, true
		}
	}
	return "", false
}

func redactInline(line string, matched *[]string) string {
	out := line
	for _, p := range inlinePatterns {
		if p.pattern.MatchString(out) {
			*matched = append(*matched, p.name)
			out = p.pattern.ReplaceAllString(out, p.replacement)
		}
	}
	return out
}

func dedupStrings(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
