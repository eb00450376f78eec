// Package precedent tokenizes a merge request's title, description, changed
// paths, and added-diff lines into a stable feature signature, and matches
// that signature against a tenant's stored GOLD precedents by Jaccard
// overlap.
package precedent

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/verustcode/verustcode/internal/checkengine"
)

// topTokenCount is the feature signature's fixed dimensionality (spec §4.2).
const topTokenCount = 30

var lowerCase = cases.Lower(language.English)

// stopwords is a small fixed English stopword list. Pure numeric tokens and
// tokens of length ≤ 2 are dropped separately, not listed here.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true, "not": true,
	"you": true, "all": true, "any": true, "can": true, "had": true, "her": true,
	"was": true, "one": true, "our": true, "out": true, "day": true, "get": true,
	"has": true, "him": true, "his": true, "how": true, "man": true, "new": true,
	"now": true, "old": true, "see": true, "two": true, "way": true, "who": true,
	"boy": true, "did": true, "its": true, "let": true, "put": true, "say": true,
	"she": true, "too": true, "use": true, "with": true, "this": true, "that": true,
	"from": true, "have": true, "into": true, "more": true, "some": true, "such": true,
	"than": true, "then": true, "them": true, "they": true, "were": true, "will": true,
	"your": true, "about": true, "which": true, "their": true, "would": true, "there": true,
	"these": true, "could": true, "other": true,
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)
var pureNumeric = regexp.MustCompile(`^[0-9]+$`)

// FeatureSignature is the stable fingerprint of an MR: its top-N token set
// plus a hash of that set, used for idempotent comparison and storage.
type FeatureSignature struct {
	Tokens []string
	Hash   string
}

// MRInput is the token sources considered, in priority order: title,
// description, path components of changed files, then added diff lines.
type MRInput struct {
	Title       string
	Description string
	Changes     []checkengine.FileChange
}

// BuildSignature tokenizes an MR's inputs into a FeatureSignature.
// Normalization: lowercase/case-fold, split on non-alphanumeric and
// camelCase boundaries, drop tokens of length ≤ 2, drop stopwords, drop
// pure-numeric tokens. Tokens are ranked by frequency descending, the top
// 30 are kept, then sorted alphabetically for signature stability.
func BuildSignature(in MRInput) FeatureSignature {
	freq := map[string]int{}

	addText := func(text string) {
		for _, tok := range tokenize(text) {
			freq[tok]++
		}
	}

	addText(in.Title)
	addText(in.Description)
	for _, c := range in.Changes {
		addText(pathComponents(c.Path))
		for _, l := range checkengine.ParseAddedLines(c.Diff) {
			addText(l.Text)
		}
	}

	type tokenCount struct {
		token string
		count int
	}
	ranked := make([]tokenCount, 0, len(freq))
	for tok, count := range freq {
		ranked = append(ranked, tokenCount{tok, count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].token < ranked[j].token
	})

	n := topTokenCount
	if len(ranked) < n {
		n = len(ranked)
	}
	tokens := make([]string, n)
	for i := 0; i < n; i++ {
		tokens[i] = ranked[i].token
	}
	sort.Strings(tokens)

	return FeatureSignature{
		Tokens: tokens,
		Hash:   hashTokens(tokens),
	}
}

func hashTokens(tokens []string) string {
	sum := sha256.Sum256([]byte(strings.Join(tokens, "|")))
	return hex.EncodeToString(sum[:])
}

// pathComponents splits a file path into its segments for tokenization, so
// "internal/checkengine/registry.go" contributes "internal", "checkengine",
// and "registry".
func pathComponents(path string) string {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '.'
	})
	return strings.Join(parts, " ")
}

// tokenize implements the full normalization pipeline for one piece of text.
func tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var out []string
	for _, word := range splitCamelAndDelimiters(text) {
		folded := lowerCase.String(word)
		if len(folded) <= 2 {
			continue
		}
		if pureNumeric.MatchString(folded) {
			continue
		}
		if stopwords[folded] {
			continue
		}
		out = append(out, folded)
	}
	return out
}

// splitCamelAndDelimiters splits on non-alphanumeric separators and on
// camelCase boundaries (a lowercase-then-uppercase transition).
func splitCamelAndDelimiters(text string) []string {
	var words []string
	for _, chunk := range nonAlphanumeric.Split(text, -1) {
		if chunk == "" {
			continue
		}
		words = append(words, splitCamel(chunk)...)
	}
	return words
}

func splitCamel(s string) []string {
	var words []string
	var current strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(runes[i-1]) {
			words = append(words, current.String())
			current.Reset()
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}
	return words
}
