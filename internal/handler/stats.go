package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/counterworks/counterlog/internal/stats"
)

// StatsHandler exposes the admin statistics endpoint.
type StatsHandler struct {
	svc    *stats.Service
	logger *zap.Logger
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(svc *stats.Service, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{svc: svc, logger: logger}
}

// Register mounts the stats route on the given (admin-guarded) router group.
func (h *StatsHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/admin/stats", h.PerMember)
}

// PerMember handles GET /admin/stats.
func (h *StatsHandler) PerMember(c *gin.Context) {
	totals, err := h.svc.PerMember(c.Request.Context())
	if err != nil {
		h.logger.Error("member stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "temporary system error, please retry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": totals})
}
