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

func TestMergeRequestHandler_ListMergeRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	in, st := newTestIntake(t)

	tenant := store.CreateTestTenant(t, st)
	repo := store.CreateTestRepository(t, st, tenant.ID)
	store.CreateTestMergeRequest(t, st, tenant.ID, repo.ID)

	h := NewMergeRequestHandler(st, in, func(string) (provider.Provider, error) { return nil, nil })

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/merge-requests", nil)
	withTenant(c, tenant.ID)

	h.ListMergeRequests(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestMergeRequestHandler_GetMergeRequest_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	in, st := newTestIntake(t)
	tenant := store.CreateTestTenant(t, st)

	h := NewMergeRequestHandler(st, in, func(string) (provider.Provider, error) { return nil, nil })

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/merge-requests/missing-project/7", nil)
	c.Params = gin.Params{{Key: "projectId", Value: "missing-project"}, {Key: "iid", Value: "7"}}
	withTenant(c, tenant.ID)

	h.GetMergeRequest(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMergeRequestHandler_GetMergeRequest_Found(t *testing.T) {
	gin.SetMode(gin.TestMode)
	in, st := newTestIntake(t)

	tenant := store.CreateTestTenant(t, st)
	repo := store.CreateTestRepository(t, st, tenant.ID)
	mr := store.CreateTestMergeRequest(t, st, tenant.ID, repo.ID)

	h := NewMergeRequestHandler(st, in, func(string) (provider.Provider, error) { return nil, nil })

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/merge-requests/"+repo.ProviderRepoID+"/"+"1", nil)
	c.Params = gin.Params{{Key: "projectId", Value: repo.ProviderRepoID}, {Key: "iid", Value: "1"}}
	withTenant(c, tenant.ID)

	h.GetMergeRequest(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), mr.ID)
}

func TestMergeRequestHandler_TriggerReview_ProviderNotConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	in, st := newTestIntake(t)

	tenant := store.CreateTestTenant(t, st)
	repo := store.CreateTestRepository(t, st, tenant.ID)
	store.CreateTestMergeRequest(t, st, tenant.ID, repo.ID)

	resolver := func(name string) (provider.Provider, error) {
		return nil, &provider.ProviderError{Provider: name, Message: "not registered"}
	}
	h := NewMergeRequestHandler(st, in, orchestrator.ProviderResolver(resolver))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/merge-requests/"+repo.ProviderRepoID+"/1/trigger-review", nil)
	c.Params = gin.Params{{Key: "projectId", Value: repo.ProviderRepoID}, {Key: "iid", Value: "1"}}
	withTenant(c, tenant.ID)

	h.TriggerReview(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMergeRequestHandler_TriggerReview_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	in, st := newTestIntake(t)

	tenant := store.CreateTestTenant(t, st)
	repo := store.CreateTestRepository(t, st, tenant.ID)
	mr := store.CreateTestMergeRequest(t, st, tenant.ID, repo.ID)

	fake := &fakeProvider{
		name: "gitlab",
		pr: &provider.PullRequest{
			Number:     mr.IID,
			Title:      "Updated title",
			State:      "opened",
			HeadBranch: "feature/refreshed",
			HeadSHA:    "abc123",
			BaseBranch: "main",
			URL:        "https://gitlab.example.com/test-group/test-repo/-/merge_requests/1",
		},
	}
	resolver := func(name string) (provider.Provider, error) { return fake, nil }
	h := NewMergeRequestHandler(st, in, orchestrator.ProviderResolver(resolver))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/merge-requests/"+repo.ProviderRepoID+"/1/trigger-review", nil)
	c.Params = gin.Params{{Key: "projectId", Value: repo.ProviderRepoID}, {Key: "iid", Value: "1"}}
	withTenant(c, tenant.ID)

	h.TriggerReview(c)

	assert.Equal(t, http.StatusAccepted, w.Code)
}
