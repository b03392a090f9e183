package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/services"
)

type AchievementHandler struct {
	svc *services.AchievementService
}

func NewAchievementHandler(svc *services.AchievementService) *AchievementHandler {
	return &AchievementHandler{svc: svc}
}

func (h *AchievementHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/achievements", h.List)
	r.POST("/achievements/sync", h.Sync)
}

// List godoc
// @Summary  Badge catalog with the user's progress
// @Description Read only. newly_unlocked lists badges earned but not yet stored.
// @Tags     achievements
// @Produce  json
// @Success  200 {object} domain.AchievementEvaluation
// @Router   /achievements [get]
func (h *AchievementHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	eval, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, eval)
}

// Sync godoc
// @Summary  Evaluate and store badge state
// @Tags     achievements
// @Produce  json
// @Success  200 {object} domain.AchievementEvaluation
// @Router   /achievements/sync [post]
func (h *AchievementHandler) Sync(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	eval, err := h.svc.Sync(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, eval)
}
