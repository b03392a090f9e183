package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/services"
)

// ProfileHandler serves the user's profile and app settings.
type ProfileHandler struct {
	profiles *services.ProfileService
	settings *services.SettingsService
}

func NewProfileHandler(profiles *services.ProfileService, settings *services.SettingsService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, settings: settings}
}

type saveProfileRequest struct {
	FullName              string   `json:"full_name" binding:"max=100"`
	Age                   *int     `json:"age" binding:"omitempty,min=0,max=130"`
	Height                *float64 `json:"height" binding:"omitempty,min=0"`
	Weight                *float64 `json:"weight" binding:"omitempty,min=0"`
	FastingExperience     string   `json:"fasting_experience" binding:"omitempty,oneof=beginner intermediate advanced"`
	HealthGoals           string   `json:"health_goals" binding:"max=2000"`
	PreferredFastDuration int      `json:"preferred_fast_duration" binding:"omitempty,min=1,max=168"`
}

func (h *ProfileHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/profile", h.GetProfile)
	r.PUT("/profile", h.SaveProfile)
	r.GET("/settings", h.GetSettings)
	r.PUT("/settings", h.SaveSettings)
}

// GetProfile godoc
// @Summary  Current user's profile
// @Tags     profile
// @Produce  json
// @Success  200 {object} domain.UserProfile
// @Failure  404 {object} map[string]string
// @Router   /profile [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	profile, err := h.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) SaveProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req saveProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	profile, err := h.profiles.Save(c.Request.Context(), services.SaveProfileInput{
		UserID:                userID,
		FullName:              req.FullName,
		Age:                   req.Age,
		Height:                req.Height,
		Weight:                req.Weight,
		FastingExperience:     req.FastingExperience,
		HealthGoals:           req.HealthGoals,
		PreferredFastDuration: req.PreferredFastDuration,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetSettings godoc
// @Summary  App settings, defaults when never saved
// @Tags     settings
// @Produce  json
// @Success  200 {object} domain.Settings
// @Router   /settings [get]
func (h *ProfileHandler) GetSettings(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	settings, err := h.settings.Get(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// SaveSettings decodes the body over the current settings, so omitted
// fields keep their value.
func (h *ProfileHandler) SaveSettings(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	current, err := h.settings.Get(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	if err := c.ShouldBindJSON(current); err != nil {
		badRequest(c, err)
		return
	}

	saved, err := h.settings.Save(c.Request.Context(), userID, current)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}
