package orchestrator

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/verustcode/verustcode/internal/checkengine"
	"github.com/verustcode/verustcode/internal/git/provider"
	"github.com/verustcode/verustcode/internal/llmreview"
	"github.com/verustcode/verustcode/internal/model"
	"github.com/verustcode/verustcode/internal/precedent"
	"github.com/verustcode/verustcode/internal/privacy"
)

// maxFindingsForSuggestions caps how many check results are ever offered up
// for suggestion generation, ranked by category weight then severity, so a
// badly-scoring MR doesn't blow out the prompt budget with every warning it
// produced.
const maxFindingsForSuggestions = 10

// categoryPriority orders categories for suggestion selection, lowest value
// first, in the same fixed order as checklistCategoryOrder.
var categoryPriority = map[checkengine.Category]int{
	checkengine.CategorySecurity:      0,
	checkengine.CategoryCodeQuality:   1,
	checkengine.CategoryArchitecture:  2,
	checkengine.CategoryPerformance:   3,
	checkengine.CategoryTesting:       4,
	checkengine.CategoryObservability: 5,
	checkengine.CategoryRepoHygiene:   6,
}

// augmentWithAI implements spec §4.8 step 10: gated by the process-wide AI
// flag and the tenant's TenantAiConfig, select the highest-priority
// failing/warned checks, build redacted snippets through C3, and ask C4 for
// suggestions. Any failure here is logged and swallowed — a review never
// fails because the AI step did.
func (w *Worker) augmentWithAI(ctx context.Context, log *zap.Logger, tenant *model.Tenant, mr *model.MergeRequest, results []checkengine.Result, matches []precedent.Match, diff *provider.DiffSet) []llmreview.Suggestion {
	if !w.ai.Enabled || w.ai.Client == nil {
		return nil
	}

	cfg, err := w.store.AiConfig().GetOrDefault(tenant.ID)
	if err != nil {
		log.Warn("failed to load tenant AI config, skipping AI augmentation", zap.Error(err))
		return nil
	}
	if !cfg.Enabled {
		return nil
	}

	findings := selectFindings(results, cfg.MaxSuggestions)
	if len(findings) == 0 {
		return nil
	}

	refs := make([]privacy.FindingRef, 0, len(findings))
	for _, f := range findings {
		refs = append(refs, privacy.FindingRef{CheckKey: f.CheckKey, FilePath: f.FilePath, LineHint: f.LineStart})
	}

	snippets, redactionReport := privacy.SelectSnippets(toFileChanges(diff), refs, cfg.MaxPromptChars)

	in := llmreview.GenerateInput{
		CheckResults: toCheckResultInputs(findings),
		Precedents:   toPrecedentInputs(matches),
		MR:           llmreview.MRContext{Title: mr.Title},
		Snippets:     toSnippetInputs(snippets),
		RedactionReport: llmreview.RedactionSummary{
			FilesRedacted:     redactionReport.FilesRedacted,
			TotalLinesRemoved: redactionReport.TotalLinesRemoved,
		},
	}

	out, err := w.ai.Client.GenerateSuggestions(ctx, in)
	if err != nil {
		log.Warn("AI suggestion generation failed", zap.String("llm_client", w.ai.Client.Name()), zap.Error(err))
		return nil
	}
	if out == nil {
		return nil
	}

	if len(out.Suggestions) > cfg.MaxSuggestions {
		out.Suggestions = out.Suggestions[:cfg.MaxSuggestions]
	}
	return out.Suggestions
}

// selectFindings ranks FAIL/WARN results by category priority then
// severity, keeping at most maxFindingsForSuggestions and never exceeding
// the tenant's configured MaxSuggestions either.
func selectFindings(results []checkengine.Result, maxSuggestions int) []checkengine.Result {
	var candidates []checkengine.Result
	for _, r := range results {
		if r.Status == checkengine.StatusFail || r.Status == checkengine.StatusWarn {
			candidates = append(candidates, r)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		pi, pj := categoryPriority[candidates[i].Category], categoryPriority[candidates[j].Category]
		if pi != pj {
			return pi < pj
		}
		return severityRank(candidates[i].Severity) < severityRank(candidates[j].Severity)
	})

	limit := maxFindingsForSuggestions
	if maxSuggestions < limit {
		limit = maxSuggestions
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

func severityRank(s checkengine.Severity) int {
	switch s {
	case checkengine.SeverityBlocker:
		return 0
	case checkengine.SeverityWarn:
		return 1
	default:
		return 2
	}
}

func toCheckResultInputs(results []checkengine.Result) []llmreview.CheckResultInput {
	out := make([]llmreview.CheckResultInput, 0, len(results))
	for _, r := range results {
		out = append(out, llmreview.CheckResultInput{
			CheckKey: r.CheckKey,
			Category: r.Category,
			Status:   r.Status,
			Severity: r.Severity,
			Message:  r.Message,
			FilePath: r.FilePath,
		})
	}
	return out
}

func toPrecedentInputs(matches []precedent.Match) []llmreview.PrecedentInput {
	out := make([]llmreview.PrecedentInput, 0, len(matches))
	for _, m := range matches {
		out = append(out, llmreview.PrecedentInput{ID: m.Source.ID, Title: m.Source.Title, Jaccard: m.Jaccard})
	}
	return out
}

func toSnippetInputs(snippets []privacy.Snippet) []llmreview.SnippetInput {
	out := make([]llmreview.SnippetInput, 0, len(snippets))
	for _, s := range snippets {
		out = append(out, llmreview.SnippetInput{Path: s.Path, Content: s.Content, LineStart: s.LineStart, LineEnd: s.LineEnd})
	}
	return out
}
