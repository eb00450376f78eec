// Package privacy selects the diff snippets that are allowed to leave the
// process toward the LLM adapter (C4) and redacts sensitive substrings from
// them before they do. It performs no I/O: every function here is pure over
// in-memory diff content.
package privacy

import (
	"path/filepath"
	"regexp"
	"strings"
)

// snippetRadius is the number of added-diff lines kept on each side of a
// check's lineHint; the emitted window is 2*radius+1 lines (spec §4.3).
const snippetRadius = 40

var denyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(^|/)\.env([.-][A-Za-z0-9_-]+)?$`),
	regexp.MustCompile(`\.pem$`),
	regexp.MustCompile(`\.key$`),
	regexp.MustCompile(`\.p12$`),
	regexp.MustCompile(`\.pfx$`),
	regexp.MustCompile(`(^|/)id_rsa`),
	regexp.MustCompile(`(^|/)credentials`),
	regexp.MustCompile(`(^|/)secrets/`),
	regexp.MustCompile(`(^|/)node_modules/`),
	regexp.MustCompile(`(^|/)dist/`),
	regexp.MustCompile(`(^|/)build/`),
	regexp.MustCompile(`(^|/)coverage/`),
)

var allowPrefixes = []string{"apps/", "packages/", "infra/", "scripts/", "prisma/"}

var allowExtensions = map[string]bool{
	".ts": true, ".tsx": true, ".js": true, ".jsx": true, ".json": true,
	".md": true, ".yml": true, ".yaml": true, ".sql": true, ".prisma": true,
	".sh": true, ".ps1": true,
}

// IsDenied reports whether path matches one of the hard deny patterns. Deny
// always wins over allow.
func IsDenied(path string) bool {
	normalized := filepath.ToSlash(path)
	for _, p := range denyPatterns {
		if p.MatchString(normalized) {
			return true
		}
	}
	return false
}

// IsAllowed reports whether path is eligible for snippet selection: not
// denied, and either under one of the allow-listed directory prefixes or has
// one of the allow-listed extensions.
func IsAllowed(path string) bool {
	if IsDenied(path) {
		return false
	}
	normalized := filepath.ToSlash(path)
	for _, prefix := range allowPrefixes {
		if strings.HasPrefix(normalized, prefix) {
			return true
		}
	}
	return allowExtensions[strings.ToLower(filepath.Ext(normalized))]
}
