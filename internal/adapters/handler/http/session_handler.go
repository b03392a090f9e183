package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/services"
	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/workers"
)

const maxListLimit = 500

type SessionHandler struct {
	svc    *services.SessionService
	ticker *workers.ProgressTicker
}

func NewSessionHandler(svc *services.SessionService, ticker *workers.ProgressTicker) *SessionHandler {
	if ticker == nil {
		ticker = workers.NewProgressTicker(svc.Clock(), workers.DefaultTickInterval)
	}
	return &SessionHandler{svc: svc, ticker: ticker}
}

type startSessionRequest struct {
	Type          string     `json:"type" binding:"omitempty,fasttype"`
	Protocol      string     `json:"protocol" binding:"max=50"`
	DurationHours float64    `json:"duration_hours" binding:"required,gt=0,lte=168"`
	StartTime     *time.Time `json:"start_time"`
	Notes         string     `json:"notes" binding:"max=1000"`
	Supersede     bool       `json:"supersede"`
}

type updateSessionRequest struct {
	Notes string `json:"notes" binding:"max=1000"`
}

type sessionWithProgress struct {
	*domain.FastingSession
	Progress domain.Progress `json:"progress"`
}

func (h *SessionHandler) RegisterRoutes(router *gin.RouterGroup) {
	sessions := router.Group("/sessions")
	{
		sessions.POST("", h.Start)
		sessions.GET("", h.List)
		sessions.GET("/active", h.Active)
		sessions.GET("/active/stream", h.Stream)
		sessions.GET("/:id", h.Get)
		sessions.PATCH("/:id", h.Update)
		sessions.DELETE("/:id", h.Delete)
		sessions.GET("/:id/progress", h.Progress)
		sessions.POST("/:id/stop", h.Stop)
		sessions.POST("/:id/pause", h.Pause)
		sessions.POST("/:id/resume", h.Resume)
	}
}

// Start godoc
// @Summary  Start a fast
// @Description Fails with 409 while another fast is active unless supersede is true.
// @Tags     sessions
// @Accept   json
// @Produce  json
// @Param    body body startSessionRequest true "fast"
// @Success  201 {object} domain.FastingSession
// @Failure  400,409 {object} map[string]string
// @Router   /sessions [post]
func (h *SessionHandler) Start(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	session, err := h.svc.Start(c.Request.Context(), services.StartSessionInput{
		UserID:        userID,
		Type:          req.Type,
		Protocol:      req.Protocol,
		DurationHours: req.DurationHours,
		StartTime:     req.StartTime,
		Notes:         req.Notes,
		Supersede:     req.Supersede,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// List godoc
// @Summary  List fasts, newest first
// @Tags     sessions
// @Produce  json
// @Param    limit query int false "max results (default 50)"
// @Success  200 {array} domain.FastingSession
// @Router   /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = n
	}

	sessions, err := h.svc.List(c.Request.Context(), userID, limit)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// Active godoc
// @Summary  The running fast with its progress
// @Tags     sessions
// @Produce  json
// @Success  200 {object} sessionWithProgress
// @Success  204 "no active fast"
// @Router   /sessions/active [get]
func (h *SessionHandler) Active(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	session, err := h.svc.Active(c.Request.Context(), userID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionWithProgress{
		FastingSession: session,
		Progress:       domain.ComputeProgress(h.svc.Clock().Now(), session),
	})
}

// Stream godoc
// @Summary  Server-sent progress events for the running fast
// @Description Emits a "progress" event every second, then "goal" when the target is reached or "ended" when the fast is stopped or paused. The access token may be passed as ?access_token=.
// @Tags     sessions
// @Produce  text/event-stream
// @Router   /sessions/active/stream [get]
func (h *SessionHandler) Stream(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	session, err := h.svc.Active(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()

	// Each tick re-reads the fast so a stop, pause or delete from another
	// request ends the stream with the frozen progress.
	var final *domain.FastingSession
	var goal bool
	_ = h.ticker.Run(ctx, session, func(domain.Progress) bool {
		current, err := h.svc.Get(ctx, session.ID, userID)
		if err != nil {
			if !errors.Is(err, domain.ErrSessionNotFound) {
				_ = c.Error(err)
			}
			return false
		}

		p := domain.ComputeProgress(h.svc.Clock().Now(), current)
		c.SSEvent("progress", p)
		c.Writer.Flush()

		switch {
		case current.Status != domain.StatusActive:
			final = current
			return false
		case p.GoalReached:
			goal = true
			return false
		}
		return true
	})

	if ctx.Err() != nil {
		return
	}
	switch {
	case final != nil:
		c.SSEvent("ended", gin.H{"session_id": final.ID, "status": final.Status})
		c.Writer.Flush()
	case goal:
		c.SSEvent("goal", gin.H{"session_id": session.ID})
		c.Writer.Flush()
	}
}

func (h *SessionHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	session, err := h.svc.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req updateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	session, err := h.svc.UpdateNotes(c.Request.Context(), services.UpdateSessionInput{
		ID:     c.Param("id"),
		UserID: userID,
		Notes:  req.Notes,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Progress godoc
// @Summary  Progress snapshot of one fast
// @Tags     sessions
// @Produce  json
// @Param    id path string true "session id"
// @Success  200 {object} domain.Progress
// @Failure  404 {object} map[string]string
// @Router   /sessions/{id}/progress [get]
func (h *SessionHandler) Progress(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	progress, err := h.svc.Progress(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *SessionHandler) Stop(c *gin.Context) {
	h.transition(c, h.svc.Stop)
}

func (h *SessionHandler) Pause(c *gin.Context) {
	h.transition(c, h.svc.Pause)
}

func (h *SessionHandler) Resume(c *gin.Context) {
	h.transition(c, h.svc.Resume)
}

type transitionFunc func(ctx context.Context, id string, userID string) (*domain.FastingSession, error)

func (h *SessionHandler) transition(c *gin.Context, fn transitionFunc) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	session, err := fn(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}
