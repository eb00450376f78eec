// Package router sets up the API routes for the application.
package router

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/verustcode/verustcode/consts"
	"github.com/verustcode/verustcode/internal/api/handler"
	"github.com/verustcode/verustcode/internal/api/middleware"
	"github.com/verustcode/verustcode/internal/config"
	"github.com/verustcode/verustcode/internal/intake"
	"github.com/verustcode/verustcode/internal/orchestrator"
	"github.com/verustcode/verustcode/internal/store"
)

// Setup configures all API routes: the public webhook intake and a
// bearer-JWT-gated, tenant-scoped control API (spec §4.10). Prometheus
// metrics are served on their own listener by pkg/telemetry, not through
// this router.
func Setup(r *gin.Engine, cfg *config.Config, s store.Store, in *intake.Service, providers orchestrator.ProviderResolver) {
	// Apply global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger(&middleware.LoggerConfig{
		AccessLog: cfg.Logging.AccessLog,
	}))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler(cfg.Server.Debug))

	// Apply OpenTelemetry tracing middleware
	r.Use(otelgin.Middleware(consts.ServiceName))

	// Liveness probe (public)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := r.Group("/api/v1")

	// ============== Public routes ==============

	// Webhook routes (public - authenticates via the provider's own secret)
	webhookHandler := handler.NewWebhookHandler(in)
	webhooks := v1.Group("/webhooks")
	{
		webhooks.POST("/:provider", webhookHandler.HandleWebhook)
	}

	// ============== Control API (protected) ==============

	tokenValidator := handler.NewTenantAuth(cfg.Auth.JWTSecret)

	runHandler := handler.NewReviewRunHandler(s, in)
	reviewRuns := v1.Group("/review-runs")
	reviewRuns.Use(middleware.JWTAuth(tokenValidator))
	{
		reviewRuns.GET("", runHandler.ListReviewRuns)
		reviewRuns.GET("/:id", runHandler.GetReviewRun)
		reviewRuns.POST("/:id/retry", runHandler.RetryReviewRun)
	}

	mrHandler := handler.NewMergeRequestHandler(s, in, providers)
	mergeRequests := v1.Group("/merge-requests")
	mergeRequests.Use(middleware.JWTAuth(tokenValidator))
	{
		mergeRequests.GET("", mrHandler.ListMergeRequests)
		mergeRequests.GET("/:projectId/:iid", mrHandler.GetMergeRequest)
		mergeRequests.POST("/:projectId/:iid/trigger-review", mrHandler.TriggerReview)
	}

	activityHandler := handler.NewActivityHandler()
	v1.GET("/activity", middleware.JWTAuth(tokenValidator), activityHandler.ListActivity)

	repositoryHandler := handler.NewRepositoryHandler(s, providers)
	repositories := v1.Group("/repositories")
	repositories.Use(middleware.JWTAuth(tokenValidator))
	{
		repositories.POST("/:id/ingest-docs", repositoryHandler.IngestDocs)
	}
}
