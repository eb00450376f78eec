// Package handler provides HTTP handlers for the API.
package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/verustcode/verustcode/internal/intake"
	pkgerrors "github.com/verustcode/verustcode/pkg/errors"
	"github.com/verustcode/verustcode/pkg/logger"
)

// WebhookHandler is the thin gin entry point for inbound code-host events.
// All reconciliation (tenant auth, upsert, dedup, enqueue) lives in
// intake.Service; this handler only knows how to read an HTTP request and
// translate an intake.Result into a status code.
type WebhookHandler struct {
	intake *intake.Service
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(in *intake.Service) *WebhookHandler {
	return &WebhookHandler{intake: in}
}

// HandleWebhook handles POST /api/v1/webhooks/:provider
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	providerName := c.Param("provider")

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logger.Warn("Failed to read webhook body", zap.String("provider", providerName), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    pkgerrors.ErrCodeGitWebhook,
			"message": "Failed to read request body",
		})
		return
	}

	secret := webhookSecret(c)

	result, err := h.intake.HandleWebhook(c.Request.Context(), providerName, secret, body)
	if err != nil {
		logger.Error("Intake failed to process webhook",
			zap.String("provider", providerName),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    pkgerrors.ErrCodeReviewFailed,
			"message": "Failed to process webhook",
		})
		return
	}

	switch result.Disposition {
	case intake.DispositionUnauthorized:
		logger.Warn("Webhook rejected, no tenant matched provider secret", zap.String("provider", providerName))
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    pkgerrors.ErrCodeUnauthorized,
			"message": "Unauthorized",
		})
	case intake.DispositionIgnored:
		c.JSON(http.StatusAccepted, gin.H{
			"message": "Event received but not processed",
			"reason":  result.Reason,
		})
	case intake.DispositionAcknowledged:
		c.JSON(http.StatusOK, gin.H{
			"message":       "Review already exists for this commit",
			"review_run_id": result.ReviewRunID,
			"mr_iid":        result.MrIID,
		})
	case intake.DispositionQueued:
		logger.Info("Review queued from webhook",
			zap.String("provider", providerName),
			zap.String("review_run_id", result.ReviewRunID),
			zap.Int("mr_iid", result.MrIID),
		)
		c.JSON(http.StatusAccepted, gin.H{
			"message":       "Review queued",
			"review_run_id": result.ReviewRunID,
			"mr_iid":        result.MrIID,
		})
	}
}

// webhookSecret reads the provider secret from the well-known signature
// headers used by GitLab/GitHub/Gitea, falling back to a "secret" query
// parameter for setups that can't send a custom header.
func webhookSecret(c *gin.Context) string {
	for _, header := range []string{"X-Gitlab-Token", "X-Hub-Signature-256", "X-Hub-Signature", "X-Gitea-Signature"} {
		if v := c.GetHeader(header); v != "" {
			return v
		}
	}
	return c.Query("secret")
}
