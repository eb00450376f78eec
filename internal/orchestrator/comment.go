package orchestrator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/verustcode/verustcode/internal/checkengine"
	"github.com/verustcode/verustcode/internal/git/provider"
	"github.com/verustcode/verustcode/internal/llmreview"
	"github.com/verustcode/verustcode/internal/model"
	"github.com/verustcode/verustcode/internal/precedent"
)

// summaryMarker is embedded as an HTML comment in every rendered summary so
// reconciliation can find a prior run's comment on the PR/MR to update in
// place, rather than appending a new one on every run.
const summaryMarker = "<!-- verustcode:review-summary -->"

// reconcileComment implements spec §4.8 step 11: render the deterministic
// markdown summary, skip the provider round-trip entirely if its content
// hash matches what's already posted, and otherwise either update the
// comment a previous run on this MR posted or create a new one.
func (w *Worker) reconcileComment(
	ctx context.Context,
	log *zap.Logger,
	tenant *model.Tenant,
	repo *model.Repository,
	mr *model.MergeRequest,
	prov provider.Provider,
	runID string,
	headSha string,
	score int,
	results []checkengine.Result,
	matches []precedent.Match,
	suggestions []llmreview.Suggestion,
	goldPromoted bool,
) error {
	aiSection := renderAISection(suggestions)
	body := renderSummary(runID, headSha, score, results, matches, aiSection, goldPromoted)

	bodySum := sha256.Sum256([]byte(body))
	bodyHash := hex.EncodeToString(bodySum[:])
	aiSum := sha256.Sum256([]byte(aiSection))
	aiHash := hex.EncodeToString(aiSum[:])

	existing, err := w.store.Comment().GetSummaryForRun(tenant.ID, runID)
	if err == nil && existing.BodyHash == bodyHash {
		return nil
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}

	priorCommentID, priorErr := findPriorSummaryCommentID(ctx, prov, repo.Namespace, repo.Name, mr.IID)

	opts := &provider.CommentOptions{PRNumber: mr.IID}

	if priorErr == nil && priorCommentID != 0 {
		if err := prov.UpdateComment(ctx, repo.Namespace, repo.Name, priorCommentID, mr.IID, body); err != nil {
			return err
		}
	} else {
		if err := prov.PostComment(ctx, repo.Namespace, repo.Name, opts, body); err != nil {
			return err
		}
		priorCommentID, _ = findPriorSummaryCommentID(ctx, prov, repo.Namespace, repo.Name, mr.IID)
	}

	comment := model.PostedComment{
		TenantID:      tenant.ID,
		ReviewRunID:   runID,
		Provider:      repo.Provider,
		ProviderID:    strconv.FormatInt(priorCommentID, 10),
		Type:          model.PostedCommentTypeSummary,
		Body:          body,
		AiIncluded:    len(suggestions) > 0,
		BodyHash:      bodyHash,
		AiSummaryHash: aiHash,
	}
	if existing != nil && err == nil {
		comment.ID = existing.ID
		return w.store.Comment().Update(&comment)
	}
	log.Debug("posted review summary comment", zap.String("review_run_id", runID))
	return w.store.Comment().Create(&comment)
}

// findPriorSummaryCommentID scans the PR's comments for one carrying the
// summary marker, so reconciliation updates in place across reviewRuns for
// the same MR instead of growing a new comment per push.
func findPriorSummaryCommentID(ctx context.Context, prov provider.Provider, owner, repo string, prNumber int) (int64, error) {
	comments, err := prov.ListComments(ctx, owner, repo, prNumber)
	if err != nil {
		return 0, err
	}
	for _, c := range comments {
		if strings.Contains(c.Body, summaryMarker) {
			return c.ID, nil
		}
	}
	return 0, nil
}

// checklistCategoryOrder is the fixed category order spec §4.8 step 10 uses
// for checklist and suggestion-selection priority.
var checklistCategoryOrder = []checkengine.Category{
	checkengine.CategorySecurity,
	checkengine.CategoryCodeQuality,
	checkengine.CategoryArchitecture,
	checkengine.CategoryPerformance,
	checkengine.CategoryTesting,
	checkengine.CategoryObservability,
	checkengine.CategoryRepoHygiene,
}

// renderSummary builds the deterministic markdown body in the format spec
// §6 documents: score line, Head SHA, Run ID, a per-category checklist,
// then the optional GOLD banner, precedent references, and AI suggestions
// section. It never varies in wording for the same inputs, so the
// content-hash idempotency check in reconcileComment is meaningful.
func renderSummary(runID, headSha string, score int, results []checkengine.Result, matches []precedent.Match, aiSection string, goldPromoted bool) string {
	var pass, warn, fail int
	for _, r := range results {
		switch r.Status {
		case checkengine.StatusPass:
			pass++
		case checkengine.StatusWarn:
			warn++
		case checkengine.StatusFail:
			fail++
		}
	}

	var b strings.Builder
	b.WriteString(summaryMarker)
	b.WriteString("\n## 🤖 Automated Review (Deterministic Checks)\n")
	fmt.Fprintf(&b, "**Score:** %d/100 — %d PASS / %d WARN / %d FAIL\n", score, pass, warn, fail)
	fmt.Fprintf(&b, "**Head SHA:** `%s`\n", headSha)
	fmt.Fprintf(&b, "**Run ID:** `%s`\n\n", runID)

	b.WriteString(renderChecklist(results))
	b.WriteString("\n")

	if goldPromoted {
		b.WriteString("✅ **Promoted to GOLD precedent**\n\n")
	}

	if len(matches) > 0 {
		b.WriteString("### Related precedents\n\n")
		for _, m := range matches {
			fmt.Fprintf(&b, "- %s (similarity %.2f)\n", m.Source.Title, m.Jaccard)
		}
		b.WriteString("\n")
	}

	if aiSection != "" {
		b.WriteString(aiSection)
	}

	return b.String()
}

// renderChecklist groups results by category in spec §4.8 step 10's fixed
// priority order and renders one checkbox line per check.
func renderChecklist(results []checkengine.Result) string {
	byCategory := make(map[checkengine.Category][]checkengine.Result, len(checklistCategoryOrder))
	for _, r := range results {
		byCategory[r.Category] = append(byCategory[r.Category], r)
	}

	var b strings.Builder
	for _, category := range checklistCategoryOrder {
		rows := byCategory[category]
		if len(rows) == 0 {
			continue
		}
		fmt.Fprintf(&b, "### %s\n\n", category)
		for _, r := range rows {
			writeChecklistItem(&b, r)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeChecklistItem(b *strings.Builder, r checkengine.Result) {
	box := "[x]"
	if r.Status != checkengine.StatusPass {
		box = "[ ]"
	}
	loc := r.FilePath
	if r.LineStart > 0 {
		loc = fmt.Sprintf("%s:%d", loc, r.LineStart)
	}
	if r.Status == checkengine.StatusPass {
		fmt.Fprintf(b, "- %s `%s` — PASS\n", box, r.CheckKey)
		return
	}
	if loc != "" {
		fmt.Fprintf(b, "- %s `%s` **%s** — %s (%s)\n", box, r.CheckKey, r.Severity, r.Message, loc)
	} else {
		fmt.Fprintf(b, "- %s `%s` **%s** — %s\n", box, r.CheckKey, r.Severity, r.Message)
	}
}

// renderAISection renders the optional AI suggestions block. Its own hash is
// tracked separately (model.PostedComment.AiSummaryHash) per spec §4.8
// step 11's literal aiSummaryHash = sha256(aiSection) definition.
func renderAISection(suggestions []llmreview.Suggestion) string {
	if len(suggestions) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("### 🤖 AI Fix Suggestions (Preview)\n\n")
	for _, s := range suggestions {
		fmt.Fprintf(&b, "- **%s** (%s): %s\n", s.Title, s.CheckKey, s.SuggestedFix)
	}
	return b.String()
}
