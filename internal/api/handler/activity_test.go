package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/verustcode/verustcode/internal/activity"
)

func TestActivityHandler_ListActivity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	activity.Record(activity.Entry{Kind: "review_queued", Message: "queued review for MR !1"})
	activity.Record(activity.Entry{Kind: "review_succeeded", Message: "review completed for MR !1"})

	h := NewActivityHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/activity", nil)

	h.ListActivity(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "review_succeeded")
}

func TestActivityHandler_ListActivity_LimitParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for i := 0; i < 5; i++ {
		activity.Record(activity.Entry{Kind: "tick", Message: "tick"})
	}

	h := NewActivityHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/activity?limit=1", nil)

	h.ListActivity(c)

	assert.Equal(t, http.StatusOK, w.Code)
}
