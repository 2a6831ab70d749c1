package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/library-admin-api/internal/dto"
	"github.com/noah-isme/library-admin-api/internal/middleware"
	"github.com/noah-isme/library-admin-api/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context) (*dto.DashboardResponse, bool, error)
}

// DashboardHandler serves the librarian landing page summary.
type DashboardHandler struct {
	dashboard dashboardService
}

func NewDashboardHandler(dashboard dashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Summary godoc
// @Summary Librarian dashboard
// @Description Totals, six month issue trend, recent loans and top books. meta.cache_hit reports whether the snapshot came from Redis.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	started := time.Now()
	summary, cached, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cached)
	meta := middleware.ExtractMeta(c)
	meta["processing_time_ms"] = time.Since(started).Milliseconds()
	response.JSON(c, http.StatusOK, summary, nil, meta)
}
