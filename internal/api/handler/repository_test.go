package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/verustcode/verustcode/internal/git/provider"
	"github.com/verustcode/verustcode/internal/orchestrator"
	"github.com/verustcode/verustcode/internal/store"
)

func TestRepositoryHandler_IngestDocs_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, st := newTestIntake(t)
	tenant := store.CreateTestTenant(t, st)

	h := NewRepositoryHandler(st, func(string) (provider.Provider, error) { return nil, nil })

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/repositories/missing/ingest-docs", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	withTenant(c, tenant.ID)

	h.IngestDocs(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRepositoryHandler_IngestDocs_ProviderNotConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, st := newTestIntake(t)
	tenant := store.CreateTestTenant(t, st)
	repo := store.CreateTestRepository(t, st, tenant.ID)

	resolver := func(name string) (provider.Provider, error) {
		return nil, &provider.ProviderError{Provider: name, Message: "not registered"}
	}
	h := NewRepositoryHandler(st, orchestrator.ProviderResolver(resolver))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/repositories/"+repo.ID+"/ingest-docs", nil)
	c.Params = gin.Params{{Key: "id", Value: repo.ID}}
	withTenant(c, tenant.ID)

	h.IngestDocs(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRepositoryHandler_IngestDocs_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, st := newTestIntake(t)
	tenant := store.CreateTestTenant(t, st)
	repo := store.CreateTestRepository(t, st, tenant.ID)

	fake := &fakeProvider{
		name: repo.Provider,
		files: map[string][]byte{
			"README.md": []byte("# Example\n"),
		},
	}
	resolver := func(name string) (provider.Provider, error) { return fake, nil }
	h := NewRepositoryHandler(st, orchestrator.ProviderResolver(resolver))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/repositories/"+repo.ID+"/ingest-docs", nil)
	c.Params = gin.Params{{Key: "id", Value: repo.ID}}
	withTenant(c, tenant.ID)

	h.IngestDocs(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ingested":1`)
}
