package precedent

import (
	"sort"

	"github.com/verustcode/verustcode/internal/model"
)

// jaccardThreshold and overlapThreshold are the two independent admission
// rules from §4.2: a candidate is considered relevant if it clears either
// one.
const (
	jaccardThreshold = 0.15
	overlapThreshold = 5
	maxMatches       = 5
)

// Match is one GOLD precedent judged relevant to the MR under review.
type Match struct {
	Source  model.KnowledgeSource
	Jaccard float64
	Overlap int
}

// FindMatches compares signature against every candidate's persisted
// FeatureTokens set and returns the top 5 matches ranked by Jaccard
// similarity, then by raw overlap count. An empty candidate set yields an
// empty (non-nil-error) result, never an error — there being no precedents
// yet is an expected, ordinary state for a new tenant.
func FindMatches(signature FeatureSignature, candidates []model.KnowledgeSource) []Match {
	querySet := toSet(signature.Tokens)

	var matches []Match
	for _, c := range candidates {
		candidateSet := toSet(c.FeatureTokens)
		overlap := intersectionSize(querySet, candidateSet)
		if overlap == 0 {
			continue
		}
		union := len(querySet) + len(candidateSet) - overlap
		var jaccard float64
		if union > 0 {
			jaccard = float64(overlap) / float64(union)
		}

		if jaccard < jaccardThreshold && overlap < overlapThreshold {
			continue
		}

		matches = append(matches, Match{Source: c, Jaccard: jaccard, Overlap: overlap})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Jaccard != matches[j].Jaccard {
			return matches[i].Jaccard > matches[j].Jaccard
		}
		return matches[i].Overlap > matches[j].Overlap
	})

	if len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}
	return matches
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func intersectionSize(a, b map[string]struct{}) int {
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	count := 0
	for k := range small {
		if _, ok := large[k]; ok {
			count++
		}
	}
	return count
}
