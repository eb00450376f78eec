// Package handler provides HTTP handlers for the API.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/verustcode/verustcode/internal/orchestrator"
	"github.com/verustcode/verustcode/internal/store"
	pkgerrors "github.com/verustcode/verustcode/pkg/errors"
	"github.com/verustcode/verustcode/pkg/logger"
)

// defaultIngestRef is the branch probed when the caller doesn't specify
// ?ref= explicitly.
const defaultIngestRef = "HEAD"

// RepositoryHandler exposes repository-scoped operator operations, spec
// §4.10 and §10.
type RepositoryHandler struct {
	store     store.Store
	providers orchestrator.ProviderResolver
}

// NewRepositoryHandler creates a new repository handler.
func NewRepositoryHandler(s store.Store, providers orchestrator.ProviderResolver) *RepositoryHandler {
	return &RepositoryHandler{store: s, providers: providers}
}

// IngestDocs handles POST /repositories/:id/ingest-docs. It is an
// operator-triggered, out-of-band operation (spec §10) — the only place
// DOC-type knowledge sources are fetched, deliberately kept off the review
// hot path so a slow or unreachable doc host never adds latency to a run.
func (h *RepositoryHandler) IngestDocs(c *gin.Context) {
	tenant := tenantID(c)
	id := c.Param("id")

	repo, err := h.store.Repository().GetByID(tenant, id)
	if err != nil {
		status, code := http.StatusInternalServerError, pkgerrors.ErrCodeDBQuery
		if errors.Is(err, gorm.ErrRecordNotFound) {
			status, code = http.StatusNotFound, pkgerrors.ErrCodeNotFound
		}
		c.JSON(status, gin.H{"code": code, "message": "repository not found"})
		return
	}

	ref := c.DefaultQuery("ref", defaultIngestRef)

	prov, err := h.providers(repo.Provider)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    pkgerrors.ErrCodeGitAuth,
			"message": "provider not configured: " + repo.Provider,
		})
		return
	}

	ingested := orchestrator.IngestRepositoryDocs(c.Request.Context(), h.store, logger.Get(), prov,
		tenant, repo.Provider, repo.Namespace, repo.Name, ref)

	logger.Info("doc ingestion triggered",
		zap.String("tenant_id", tenant),
		zap.String("repository_id", repo.ID),
		zap.Int("ingested", ingested),
	)
	c.JSON(http.StatusOK, gin.H{
		"repository_id": repo.ID,
		"ingested":       ingested,
	})
}
