package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/services"
)

// WellnessHandler serves the water and mood journals.
type WellnessHandler struct {
	water *services.WaterService
	mood  *services.MoodService
}

func NewWellnessHandler(water *services.WaterService, mood *services.MoodService) *WellnessHandler {
	return &WellnessHandler{water: water, mood: mood}
}

type setWaterRequest struct {
	Cups *int `json:"cups" binding:"required,min=0"`
}

type addWaterRequest struct {
	Delta int `json:"delta" binding:"required,min=-50,max=50"`
}

type saveMoodRequest struct {
	Date     string   `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Mood     string   `json:"mood" binding:"required,mood"`
	Energy   string   `json:"energy" binding:"required,energy"`
	Symptoms []string `json:"symptoms" binding:"max=8,dive,symptom"`
	Note     string   `json:"note" binding:"max=1000"`
}

func (h *WellnessHandler) RegisterRoutes(r *gin.RouterGroup) {
	water := r.Group("/water")
	{
		water.GET("/today", h.WaterToday)
		water.PUT("/today", h.SetWater)
		water.POST("/today/add", h.AddWater)
		water.GET("/history", h.WaterHistory)
	}

	mood := r.Group("/mood")
	{
		mood.GET("", h.ListMoods)
		mood.GET("/today", h.MoodToday)
		mood.PUT("/today", h.SaveMood)
		mood.GET("/summary", h.MoodSummary)
	}
}

// intQuery parses an optional integer query parameter; 0 when absent.
func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be an integer"})
		return 0, false
	}
	return n, true
}

// WaterToday godoc
// @Summary  Today's cups of water
// @Tags     water
// @Produce  json
// @Success  200 {object} domain.WaterLog
// @Router   /water/today [get]
func (h *WellnessHandler) WaterToday(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	log, err := h.water.Today(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, log)
}

func (h *WellnessHandler) SetWater(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req setWaterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	log, err := h.water.SetToday(c.Request.Context(), userID, *req.Cups)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, log)
}

func (h *WellnessHandler) AddWater(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req addWaterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	log, err := h.water.AddCups(c.Request.Context(), userID, req.Delta)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, log)
}

func (h *WellnessHandler) WaterHistory(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	days, ok := intQuery(c, "days")
	if !ok {
		return
	}

	logs, err := h.water.History(c.Request.Context(), userID, days)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// SaveMood godoc
// @Summary  Record today's (or a given day's) mood, replacing any earlier entry
// @Tags     mood
// @Accept   json
// @Produce  json
// @Param    body body saveMoodRequest true "entry"
// @Success  200 {object} domain.MoodEntry
// @Router   /mood/today [put]
func (h *WellnessHandler) SaveMood(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req saveMoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	entry, err := h.mood.Save(c.Request.Context(), services.SaveMoodInput{
		UserID:   userID,
		Date:     req.Date,
		Mood:     req.Mood,
		Energy:   req.Energy,
		Symptoms: req.Symptoms,
		Note:     req.Note,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *WellnessHandler) MoodToday(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	entry, err := h.mood.Today(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *WellnessHandler) ListMoods(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit")
	if !ok {
		return
	}

	entries, err := h.mood.List(c.Request.Context(), userID, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *WellnessHandler) MoodSummary(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	days, ok := intQuery(c, "days")
	if !ok {
		return
	}

	summary, err := h.mood.Summary(c.Request.Context(), userID, days)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
