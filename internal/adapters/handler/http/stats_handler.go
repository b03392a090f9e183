package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/services"
)

type StatsHandler struct {
	svc *services.StatsService
}

func NewStatsHandler(svc *services.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/stats/summary", h.Summary)
	r.GET("/stats/recommendation", h.Recommendation)
}

// Summary godoc
// @Summary  Lifetime fasting statistics
// @Tags     stats
// @Produce  json
// @Success  200 {object} domain.FastingStats
// @Router   /stats/summary [get]
func (h *StatsHandler) Summary(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	stats, err := h.svc.Summary(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Recommendation godoc
// @Summary  Next fast suggestion from recent history
// @Tags     stats
// @Produce  json
// @Success  200 {object} domain.Recommendation
// @Router   /stats/recommendation [get]
func (h *StatsHandler) Recommendation(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	rec, err := h.svc.Recommendation(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}
