// Package handler provides HTTP handlers for the API.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/verustcode/verustcode/internal/intake"
	"github.com/verustcode/verustcode/internal/model"
	"github.com/verustcode/verustcode/internal/orchestrator"
	"github.com/verustcode/verustcode/internal/store"
	pkgerrors "github.com/verustcode/verustcode/pkg/errors"
	"github.com/verustcode/verustcode/pkg/logger"
)

// defaultTriggerProvider is used when trigger-review's caller doesn't
// specify ?provider= explicitly.
const defaultTriggerProvider = "gitlab"

// MergeRequestHandler exposes the merge-request list/detail/trigger
// surface, spec §4.10.
type MergeRequestHandler struct {
	store     store.Store
	in        *intake.Service
	providers orchestrator.ProviderResolver
}

// NewMergeRequestHandler creates a new merge-request handler.
func NewMergeRequestHandler(s store.Store, in *intake.Service, providers orchestrator.ProviderResolver) *MergeRequestHandler {
	return &MergeRequestHandler{store: s, in: in, providers: providers}
}

// ListMergeRequests handles GET /merge-requests?limit&offset&repositoryId.
func (h *MergeRequestHandler) ListMergeRequests(c *gin.Context) {
	limit, offset := parsePageParams(c)
	tenant := tenantID(c)
	repositoryID := c.Query("repositoryId")

	mrs, total, err := h.store.MergeRequest().List(tenant, repositoryID, limit, offset)
	if err != nil {
		logger.Error("failed to list merge requests", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    pkgerrors.ErrCodeDBQuery,
			"message": "failed to list merge requests",
		})
		return
	}

	c.JSON(http.StatusOK, ListReviewRunsResponse{Data: mrs, Total: total, Limit: limit, Offset: offset})
}

// resolveRepoAndMR loads the repository identified by the :projectId path
// param (the provider's own project/repo id) and the MR within it
// identified by :iid, scoped to the caller's tenant.
func (h *MergeRequestHandler) resolveRepoAndMR(c *gin.Context) (*model.Repository, *model.MergeRequest, string, bool) {
	tenant := tenantID(c)
	projectID := c.Param("projectId")
	providerName := c.DefaultQuery("provider", defaultTriggerProvider)

	iid, err := strconv.Atoi(c.Param("iid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    pkgerrors.ErrCodeValidation,
			"message": "iid must be an integer",
		})
		return nil, nil, "", false
	}

	repo, err := h.store.Repository().GetByProviderRepoID(tenant, providerName, projectID)
	if err != nil {
		status, code := http.StatusInternalServerError, pkgerrors.ErrCodeDBQuery
		if errors.Is(err, gorm.ErrRecordNotFound) {
			status, code = http.StatusNotFound, pkgerrors.ErrCodeNotFound
		}
		c.JSON(status, gin.H{"code": code, "message": "repository not found"})
		return nil, nil, "", false
	}

	mr, err := h.store.MergeRequest().GetByIID(tenant, repo.ID, iid)
	if err != nil {
		status, code := http.StatusInternalServerError, pkgerrors.ErrCodeDBQuery
		if errors.Is(err, gorm.ErrRecordNotFound) {
			status, code = http.StatusNotFound, pkgerrors.ErrCodeNotFound
		}
		c.JSON(status, gin.H{"code": code, "message": "merge request not found"})
		return nil, nil, "", false
	}

	return repo, mr, providerName, true
}

// GetMergeRequest handles GET /merge-requests/:projectId/:iid.
func (h *MergeRequestHandler) GetMergeRequest(c *gin.Context) {
	_, mr, _, ok := h.resolveRepoAndMR(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, mr)
}

// TriggerReview handles POST /merge-requests/:projectId/:iid/trigger-review.
// Per spec §4.7's manual-trigger note, the MR is re-fetched from the code
// host first to validate its current head sha before the same dedup/enqueue
// path a fresh webhook event would take.
func (h *MergeRequestHandler) TriggerReview(c *gin.Context) {
	repo, mr, providerName, ok := h.resolveRepoAndMR(c)
	if !ok {
		return
	}
	tenant := tenantID(c)

	prov, err := h.providers(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    pkgerrors.ErrCodeGitAuth,
			"message": "provider not configured: " + providerName,
		})
		return
	}

	pr, err := prov.GetPullRequest(c.Request.Context(), repo.Namespace, repo.Name, mr.IID)
	if err != nil {
		logger.Error("failed to fetch merge request for manual trigger",
			zap.String("provider", providerName), zap.Int("iid", mr.IID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    pkgerrors.ErrCodeGitNotFound,
			"message": "failed to fetch merge request from provider",
		})
		return
	}

	mr.Title = pr.Title
	mr.SourceBranch = pr.HeadBranch
	mr.TargetBranch = pr.BaseBranch
	mr.WebURL = pr.URL
	if pr.State == "merged" {
		mr.State = model.MergeRequestStateMerged
	}
	updated, err := h.store.MergeRequest().Upsert(mr)
	if err != nil {
		logger.Error("failed to refresh merge request metadata", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    pkgerrors.ErrCodeDBQuery,
			"message": "failed to refresh merge request metadata",
		})
		return
	}

	tenantRow, err := h.store.Tenant().GetByID(tenant)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    pkgerrors.ErrCodeDBQuery,
			"message": "failed to load tenant",
		})
		return
	}

	result, err := h.in.Trigger(c.Request.Context(), tenantRow, providerName, repo, updated, pr.HeadSHA)
	if err != nil {
		logger.Error("manual trigger failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    pkgerrors.ErrCodeReviewRunFailed,
			"message": "failed to trigger review",
		})
		return
	}

	logger.Info("review manually triggered",
		zap.String("tenant_id", tenant),
		zap.String("review_run_id", result.ReviewRunID),
		zap.Int("mr_iid", result.MrIID),
	)
	c.JSON(http.StatusAccepted, gin.H{
		"message":       "review triggered",
		"review_run_id": result.ReviewRunID,
		"mr_iid":        result.MrIID,
	})
}
