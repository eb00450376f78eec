package orchestrator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/verustcode/verustcode/internal/checkengine"
	"github.com/verustcode/verustcode/internal/git/provider"
	"github.com/verustcode/verustcode/internal/model"
	"github.com/verustcode/verustcode/internal/precedent"
	"github.com/verustcode/verustcode/internal/store"
)

// maxDiffBytesPerFile trims any single file's diff before it is folded into
// a GOLD precedent's content text, so one enormous generated file can't blow
// out the token budget of every future precedent match.
const maxDiffBytesPerFile = 50 * 1024

// evaluateGoldEligibility implements spec §4.9: a merged MR is promoted to
// a GOLD_MR knowledge source when its score exceeds the tenant's configured
// threshold, it carries no SECURITY or CODE_QUALITY FAILs, and — when the
// provider exposes approval data — it cleared the tenant's minimum approval
// count. Approval data being unavailable (ErrApprovalsUnavailable) is
// treated as "no opinion", not a blocker.
func (w *Worker) evaluateGoldEligibility(tenant *model.Tenant, repo *model.Repository, mr *model.MergeRequest, results []checkengine.Result, score int, diff *provider.DiffSet) (bool, error) {
	if score <= tenant.GoldScoreThreshold {
		return false, nil
	}
	if hasDisqualifyingFail(results) {
		return false, nil
	}

	prov, err := w.providers(repo.Provider)
	if err == nil {
		approvals, aerr := prov.GetMergeRequestApprovals(context.Background(), repo.Namespace, repo.Name, mr.IID)
		if aerr == nil && approvals != nil {
			if len(approvals.ApprovedBy) < tenant.GoldMinApprovals {
				return false, nil
			}
		}
		// ErrApprovalsUnavailable or any other error: no opinion, proceed.
	}

	contentText, contentHash := buildGoldContentText(mr, diff)
	source := precedent.ToKnowledgeSource(
		tenant.ID, repo.Provider, mr.ID,
		mr.Title, mr.WebURL, contentText, contentHash,
		precedent.MRInput{Title: mr.Title, Changes: toFileChanges(diff)},
	)

	_, created, err := w.store.Knowledge().Upsert(&source)
	if err != nil {
		return false, err
	}
	if created {
		w.logger.Info("promoted merge request to GOLD precedent",
			zap.String("tenant_id", tenant.ID),
			zap.String("merge_request_id", mr.ID),
			zap.Int("score", score),
		)
	}
	return created, nil
}

// hasDisqualifyingFail reports whether results contains a FAIL in either
// category §4.9 treats as an absolute block on GOLD promotion, regardless
// of overall score.
func hasDisqualifyingFail(results []checkengine.Result) bool {
	for _, r := range results {
		if r.Status != checkengine.StatusFail {
			continue
		}
		if r.Category == checkengine.CategorySecurity || r.Category == checkengine.CategoryCodeQuality {
			return true
		}
	}
	return false
}

// buildGoldContentText deterministically renders an MR's title, file list,
// and per-file diffs (each capped at maxDiffBytesPerFile) into the text a
// future precedent match will tokenize, plus its sha256 content hash used
// for KnowledgeStore's no-op-on-identical-bytes upsert rule.
func buildGoldContentText(mr *model.MergeRequest, diff *provider.DiffSet) (string, string) {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(mr.Title)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "status: %s\n\n", mr.State)

	if diff != nil {
		for _, f := range diff.Files {
			path := f.NewPath
			if path == "" {
				path = f.OldPath
			}
			status := "modified"
			switch {
			case f.DeletedFile:
				status = "deleted"
			case f.RenamedFile:
				status = "renamed"
			case f.NewFile:
				status = "added"
			}
			fmt.Fprintf(&b, "## %s (%s)\n\n", path, status)
			b.WriteString(ingestDiffText(f.Diff))
			b.WriteString("\n\n")
		}
	}

	sum := sha256.Sum256([]byte(b.String()))
	return b.String(), hex.EncodeToString(sum[:])
}

// ingestDiffText trims a single file's diff to the shared per-file budget,
// appending a truncation marker when it had to cut. Grounded on §4.9's
// instruction to bound per-file diff size in a GOLD precedent's stored
// content text.
func ingestDiffText(diff string) string {
	if len(diff) <= maxDiffBytesPerFile {
		return diff
	}
	return diff[:maxDiffBytesPerFile] + "\n... [truncated]\n"
}

// docIngestCandidatePaths is the fixed, best-effort set of documentation
// paths probed for DOC-type knowledge ingestion. The module never clones a
// repository's full tree — it only ever sees diffs and single-file reads
// through the provider API — so a true recursive filesystem walk isn't
// available; this fixed probe list is the closest approximation that stays
// within the existing Provider surface (GetProjectFileRaw).
var docIngestCandidatePaths = []string{
	"README.md",
	"docs/README.md",
	"CONTRIBUTING.md",
	"ARCHITECTURE.md",
}

// IngestRepositoryDocs best-effort fetches each candidate doc path and
// upserts it as a DOC knowledge source, returning the count actually
// ingested. Any single file being absent or unreadable is silently skipped;
// this is opportunistic enrichment, never a condition that should fail
// anything.
//
// This is a standalone operator-triggered operation (spec §10's
// POST /repositories/:id/ingest-docs), not part of the review hot path: it
// does its own provider fetches and store writes outside of processRun, so a
// slow or unreachable doc host never adds latency to a review run.
func IngestRepositoryDocs(ctx context.Context, s store.Store, log *zap.Logger, prov provider.Provider, tenantID, repoProvider, repoNamespace, repoName, ref string) int {
	ingested := 0
	for _, path := range docIngestCandidatePaths {
		content, err := prov.GetProjectFileRaw(ctx, repoNamespace, repoName, ref, path)
		if err != nil || len(content) == 0 {
			continue
		}
		sum := sha256.Sum256(content)
		source := model.KnowledgeSource{
			TenantID:    tenantID,
			Type:        model.KnowledgeSourceTypeDoc,
			Provider:    repoProvider,
			ProviderID:  repoNamespace + "/" + repoName + ":" + path,
			Title:       path,
			ContentText: string(content),
			ContentHash: hex.EncodeToString(sum[:]),
		}
		if _, _, err := s.Knowledge().Upsert(&source); err != nil {
			log.Debug("doc ingest upsert failed", zap.String("path", path), zap.Error(err))
			continue
		}
		ingested++
	}
	return ingested
}
