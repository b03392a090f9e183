package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/services"
)

type MeditationHandler struct {
	svc *services.MeditationService
}

func NewMeditationHandler(svc *services.MeditationService) *MeditationHandler {
	return &MeditationHandler{svc: svc}
}

type recordMeditationRequest struct {
	Minutes int `json:"minutes" binding:"required,min=1,max=600"`
}

func (h *MeditationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/meditation", h.Stats)
	r.POST("/meditation/sessions", h.Record)
	r.GET("/affirmation", h.Affirmation)
}

// Stats godoc
// @Summary  Meditation totals and streak
// @Tags     meditation
// @Produce  json
// @Success  200 {object} domain.MeditationStats
// @Router   /meditation [get]
func (h *MeditationHandler) Stats(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	stats, err := h.svc.Stats(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *MeditationHandler) Record(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req recordMeditationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	stats, err := h.svc.Record(c.Request.Context(), userID, req.Minutes)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stats)
}

// Affirmation godoc
// @Summary  Affirmation of the day in the user's timezone
// @Tags     meditation
// @Produce  json
// @Success  200 {object} services.Affirmation
// @Router   /affirmation [get]
func (h *MeditationHandler) Affirmation(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	a, err := h.svc.Affirmation(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}
