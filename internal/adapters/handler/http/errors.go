package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
)

var notFoundErrors = []error{
	domain.ErrSessionNotFound,
	domain.ErrProfileNotFound,
	domain.ErrMoodEntryNotFound,
	domain.ErrBadgeNotFound,
	domain.ErrUserNotFound,
}

var validationErrors = []error{
	domain.ErrSessionInvalidUserID,
	domain.ErrInvalidDuration,
	domain.ErrDurationTooLong,
	domain.ErrInvalidFastingType,
	domain.ErrInvalidEndTime,
	domain.ErrSessionNotesTooLong,
	domain.ErrStartTimeInFuture,
	domain.ErrProtocolTooLong,
	domain.ErrInvalidAge,
	domain.ErrInvalidHeight,
	domain.ErrInvalidWeight,
	domain.ErrInvalidExperience,
	domain.ErrInvalidPreferredFast,
	domain.ErrFullNameTooLong,
	domain.ErrInvalidTheme,
	domain.ErrInvalidUnits,
	domain.ErrInvalidPreferredStart,
	domain.ErrInvalidTimezone,
	domain.ErrInvalidCups,
	domain.ErrTooManyCups,
	domain.ErrInvalidMood,
	domain.ErrInvalidEnergy,
	domain.ErrInvalidSymptom,
	domain.ErrMoodNoteTooLong,
	domain.ErrInvalidHistoryDays,
	domain.ErrInvalidDate,
	domain.ErrInvalidEmail,
	domain.ErrPasswordTooShort,
	domain.ErrInvalidMeditationMinutes,
}

var conflictErrors = []error{
	domain.ErrActiveSessionExists,
	domain.ErrSessionNotActive,
	domain.ErrSessionNotPaused,
	domain.ErrSessionAlreadyEnded,
	domain.ErrEmailAlreadyExists,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// handleError maps domain errors to status codes. Ownership failures are
// reported as 404 so ids of other users' data are not confirmed.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrUnauthorized), isAny(err, notFoundErrors):
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})

	case isAny(err, validationErrors):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case isAny(err, conflictErrors):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
}

// requireUser reads the authenticated user id or writes a 401.
func requireUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		handleError(c, domain.ErrUnauthenticated)
		return "", false
	}
	return userID, true
}
