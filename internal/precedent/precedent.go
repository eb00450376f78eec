package precedent

import (
	"github.com/verustcode/verustcode/internal/model"
	"github.com/verustcode/verustcode/internal/store"
)

// Lookup builds the feature signature for an MR and matches it against the
// tenant's GOLD precedents. It performs a single store read and never
// writes; callers decide separately whether a reviewed MR is later promoted
// to a precedent (that happens post-merge, outside the review path).
func Lookup(s store.Store, tenantID string, in MRInput) (FeatureSignature, []Match, error) {
	signature := BuildSignature(in)

	candidates, err := s.Knowledge().ListByType(tenantID, model.KnowledgeSourceTypeGoldMR)
	if err != nil {
		return signature, nil, err
	}
	if len(candidates) == 0 {
		return signature, nil, nil
	}

	return signature, FindMatches(signature, candidates), nil
}

// ToKnowledgeSource builds the persisted row for a merged MR being promoted
// to a GOLD precedent. The caller supplies the identity and content fields;
// FeatureTokens is derived here so storage never re-tokenizes at query time.
func ToKnowledgeSource(tenantID, provider, providerID, title, sourceURL, contentText, contentHash string, in MRInput) model.KnowledgeSource {
	signature := BuildSignature(in)
	return model.KnowledgeSource{
		TenantID:      tenantID,
		Type:          model.KnowledgeSourceTypeGoldMR,
		Provider:      provider,
		ProviderID:    providerID,
		Title:         title,
		SourceURL:     sourceURL,
		ContentText:   contentText,
		ContentHash:   contentHash,
		FeatureTokens: model.StringArray(signature.Tokens),
	}
}
