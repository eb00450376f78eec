// Package handler provides HTTP handlers for the API.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/verustcode/verustcode/internal/activity"
)

// ActivityHandler exposes the in-memory activity tail, spec §4.10/§5.11.
type ActivityHandler struct{}

// NewActivityHandler creates a new activity handler.
func NewActivityHandler() *ActivityHandler {
	return &ActivityHandler{}
}

// ListActivity handles GET /activity?limit, returning the most recent
// entries (oldest first) capped at the buffer's own capacity.
func (h *ActivityHandler) ListActivity(c *gin.Context) {
	limit := activity.Capacity
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > activity.Capacity {
		limit = activity.Capacity
	}

	entries := activity.Snapshot()
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}
