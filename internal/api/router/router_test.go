package router

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/verustcode/internal/config"
	"github.com/verustcode/verustcode/internal/git/provider"
	"github.com/verustcode/verustcode/internal/intake"
	"github.com/verustcode/verustcode/internal/queue"
	"github.com/verustcode/verustcode/internal/store"
	"github.com/verustcode/verustcode/pkg/logger"
)

func testConfig(jwtSecret string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Debug:       false,
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Logging: logger.Config{
			AccessLog: false,
		},
		Auth: config.AuthConfig{
			JWTSecret: jwtSecret,
		},
	}
}

func noopResolver(name string) (provider.Provider, error) {
	return nil, errors.New("provider not configured: " + name)
}

func setupTestRouter(t *testing.T, jwtSecret string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()

	s, cleanupStore := store.SetupTestDB(t)
	t.Cleanup(cleanupStore)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	q := queue.New(client, "test-router")
	in := intake.NewService(s, q)

	Setup(r, testConfig(jwtSecret), s, in, noopResolver)
	return r
}

func signToken(t *testing.T, secret, tenantID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"tenantId": tenantID,
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestHealthz(t *testing.T) {
	r := setupTestRouter(t, "test-secret")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/healthz", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestWebhookRouteExists(t *testing.T) {
	r := setupTestRouter(t, "test-secret")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/webhooks/github", nil)
	r.ServeHTTP(w, req)

	assert.NotEqual(t, http.StatusNotFound, w.Code)
}

func TestControlAPIRequiresAuth(t *testing.T) {
	r := setupTestRouter(t, "test-secret")

	paths := []struct {
		method string
		path   string
	}{
		{"GET", "/api/v1/review-runs"},
		{"GET", "/api/v1/review-runs/some-id"},
		{"POST", "/api/v1/review-runs/some-id/retry"},
		{"GET", "/api/v1/merge-requests"},
		{"GET", "/api/v1/merge-requests/123/4"},
		{"POST", "/api/v1/merge-requests/123/4/trigger-review"},
		{"GET", "/api/v1/activity"},
		{"POST", "/api/v1/repositories/some-id/ingest-docs"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(p.method, p.path, nil)
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestControlAPIAcceptsValidToken(t *testing.T) {
	secret := "test-secret-key-for-testing-only"
	r := setupTestRouter(t, secret)
	token := signToken(t, secret, "tenant-1")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/review-runs", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := setupTestRouter(t, "test-secret")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
