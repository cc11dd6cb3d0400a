package rest

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/models"
)

// StatsService defines the interface for module statistics
type StatsService interface {
	ComputeStats(ctx context.Context, ownerID, moduleID string) (*models.StatsResult, error)
}

// StatsHandler serves module statistics
type StatsHandler struct {
	svc StatsService
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(svc StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// GetStats handles GET /api/modules/:id/stats
func (h *StatsHandler) GetStats(c *gin.Context) {
	HandleGetEnvelope(c, "stats", func() (interface{}, error) {
		return h.svc.ComputeStats(c.Request.Context(), ownerID(c), c.Param("id"))
	})
}
