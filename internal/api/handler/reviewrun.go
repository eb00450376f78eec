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
	"github.com/verustcode/verustcode/internal/store"
	pkgerrors "github.com/verustcode/verustcode/pkg/errors"
	"github.com/verustcode/verustcode/pkg/logger"
)

// Pagination bounds shared across the control API's list endpoints.
const (
	defaultLimit = 20
	maxLimit     = 100
)

// ReviewRunHandler exposes the review-run list/detail/retry surface, spec
// §4.10.
type ReviewRunHandler struct {
	store store.Store
	in    *intake.Service
}

// NewReviewRunHandler creates a new review-run handler.
func NewReviewRunHandler(s store.Store, in *intake.Service) *ReviewRunHandler {
	return &ReviewRunHandler{store: s, in: in}
}

func parsePageParams(c *gin.Context) (limit, offset int) {
	limit = defaultLimit
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset = 0
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

func tenantID(c *gin.Context) string {
	v, _ := c.Get("tenant_id")
	tenantID, _ := v.(string)
	return tenantID
}

// ListReviewRunsResponse is the paginated list envelope.
type ListReviewRunsResponse struct {
	Data   interface{} `json:"data"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// ListReviewRuns handles GET /review-runs?limit&offset.
func (h *ReviewRunHandler) ListReviewRuns(c *gin.Context) {
	limit, offset := parsePageParams(c)
	tenant := tenantID(c)

	runs, total, err := h.store.ReviewRun().List(tenant, limit, offset)
	if err != nil {
		logger.Error("failed to list review runs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    pkgerrors.ErrCodeDBQuery,
			"message": "failed to list review runs",
		})
		return
	}

	c.JSON(http.StatusOK, ListReviewRunsResponse{Data: runs, Total: total, Limit: limit, Offset: offset})
}

// GetReviewRun handles GET /review-runs/:id, returning the run with its
// check results and suggestions eager-loaded.
func (h *ReviewRunHandler) GetReviewRun(c *gin.Context) {
	id := c.Param("id")
	tenant := tenantID(c)

	run, err := h.store.ReviewRun().LoadWithResults(tenant, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    pkgerrors.ErrCodeReviewRunNotFound,
				"message": "review run not found",
			})
			return
		}
		logger.Error("failed to load review run", zap.String("review_run_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    pkgerrors.ErrCodeDBQuery,
			"message": "failed to load review run",
		})
		return
	}

	c.JSON(http.StatusOK, run)
}

// RetryReviewRun handles POST /review-runs/:id/retry.
func (h *ReviewRunHandler) RetryReviewRun(c *gin.Context) {
	id := c.Param("id")
	tenant := tenantID(c)

	result, err := h.in.Retry(c.Request.Context(), tenant, id)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"code":    pkgerrors.ErrCodeReviewRunNotFound,
				"message": "review run not found",
			})
		case errors.Is(err, intake.ErrRunNotFailed):
			c.JSON(http.StatusConflict, gin.H{
				"code":    pkgerrors.ErrCodeReviewRunConflict,
				"message": "review run is not in a retryable state",
			})
		default:
			logger.Error("failed to retry review run", zap.String("review_run_id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    pkgerrors.ErrCodeReviewRunFailed,
				"message": "failed to retry review run",
			})
		}
		return
	}

	logger.Info("review run retried",
		zap.String("tenant_id", tenant),
		zap.String("review_run_id", result.ReviewRunID),
	)
	c.JSON(http.StatusAccepted, gin.H{
		"message":       "review queued for retry",
		"review_run_id": result.ReviewRunID,
		"mr_iid":        result.MrIID,
	})
}
