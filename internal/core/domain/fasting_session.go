package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionInvalidUserID = errors.New("invalid user id")
	ErrInvalidDuration      = errors.New("duration_hours must be greater than zero")
	ErrDurationTooLong      = errors.New("duration_hours is too long (max 168)")
	ErrInvalidFastingType   = errors.New("invalid fasting type (must be intermittent, water, alternate_day or extended)")
	ErrInvalidEndTime       = errors.New("end time cannot be before start time")
	ErrSessionNotActive     = errors.New("fasting session is not active")
	ErrSessionNotPaused     = errors.New("fasting session is not paused")
	ErrSessionAlreadyEnded  = errors.New("fasting session has already ended")
	ErrSessionNotesTooLong  = errors.New("notes are too long (max 1000 chars)")
	ErrStartTimeInFuture    = errors.New("start time cannot be in the future")
	ErrProtocolTooLong      = errors.New("protocol is too long (max 50 chars)")
	ErrActiveSessionExists  = errors.New("an active fasting session already exists")
	ErrSessionNotFound      = errors.New("fasting session not found")
)

type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusCompleted SessionStatus = "completed"
	StatusStopped   SessionStatus = "stopped"
	StatusPaused    SessionStatus = "paused"
)

const (
	FastingTypeIntermittent = "intermittent"
	FastingTypeWater        = "water"
	FastingTypeAlternateDay = "alternate_day"
	FastingTypeExtended     = "extended"

	MaxDurationHours = 168
	MaxNotesLen      = 1000
	MaxProtocolLen   = 50
)

// IsValidFastingType reports whether t is one of the supported fasting types.
func IsValidFastingType(t string) bool {
	switch t {
	case FastingTypeIntermittent, FastingTypeWater, FastingTypeAlternateDay, FastingTypeExtended:
		return true
	}
	return false
}

type FastingSession struct {
	ID             string        `json:"id" db:"id"`
	UserID         string        `json:"user_id" db:"user_id"`
	Type           string        `json:"type" db:"type"`
	Protocol       *string       `json:"protocol,omitempty" db:"protocol"`
	StartTime      time.Time     `json:"start_time" db:"start_time"`
	PlannedEndTime time.Time     `json:"planned_end_time" db:"planned_end_time"`
	DurationHours  float64       `json:"duration_hours" db:"duration_hours"`
	Status         SessionStatus `json:"status" db:"status"`
	ActualEndTime  *time.Time    `json:"actual_end_time,omitempty" db:"actual_end_time"`
	Notes          string        `json:"notes" db:"notes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func NewFastingSession(userID, fastType, protocol string, durationHours float64, start time.Time, notes string) (*FastingSession, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrSessionInvalidUserID
	}
	if !IsValidFastingType(fastType) {
		return nil, ErrInvalidFastingType
	}
	if durationHours <= 0 {
		return nil, ErrInvalidDuration
	}
	if durationHours > MaxDurationHours {
		return nil, ErrDurationTooLong
	}

	protocol = strings.TrimSpace(protocol)
	if len(protocol) > MaxProtocolLen {
		return nil, ErrProtocolTooLong
	}
	notes = strings.TrimSpace(notes)
	if len(notes) > MaxNotesLen {
		return nil, ErrSessionNotesTooLong
	}

	var protoPtr *string
	if protocol != "" {
		protoPtr = &protocol
	}

	start = start.UTC()
	now := time.Now().UTC()

	return &FastingSession{
		ID:             uuid.New().String(),
		UserID:         userID,
		Type:           fastType,
		Protocol:       protoPtr,
		StartTime:      start,
		PlannedEndTime: start.Add(hoursToDuration(durationHours)),
		DurationHours:  durationHours,
		Status:         StatusActive,
		Notes:          notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// IsActive reports whether the session counts towards the single-active rule.
func (s *FastingSession) IsActive() bool {
	return s.Status == StatusActive
}

func (s *FastingSession) HasEnded() bool {
	return s.ActualEndTime != nil
}

// EndTime returns the actual end of the session, or false if it is still running.
func (s *FastingSession) EndTime() (time.Time, bool) {
	if s.ActualEndTime == nil {
		return time.Time{}, false
	}
	return *s.ActualEndTime, true
}

// Hours is the fasted time of an ended session. Sessions that have not ended contribute 0.
func (s *FastingSession) Hours() float64 {
	end, ok := s.EndTime()
	if !ok {
		return 0
	}
	return end.Sub(s.StartTime).Hours()
}

// End closes the session at the given time. The status becomes completed if the
// planned duration was reached, stopped otherwise.
func (s *FastingSession) End(at time.Time) error {
	if s.HasEnded() {
		return ErrSessionAlreadyEnded
	}
	if s.Status != StatusActive && s.Status != StatusPaused {
		return ErrSessionNotActive
	}

	at = at.UTC()
	if at.Before(s.StartTime) {
		return ErrInvalidEndTime
	}

	if ComputeProgress(at, s).Percent >= 100 {
		s.Status = StatusCompleted
	} else {
		s.Status = StatusStopped
	}
	s.ActualEndTime = &at
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *FastingSession) Pause() error {
	if s.Status != StatusActive {
		return ErrSessionNotActive
	}
	s.Status = StatusPaused
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *FastingSession) Resume() error {
	if s.Status != StatusPaused {
		return ErrSessionNotPaused
	}
	s.Status = StatusActive
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *FastingSession) UpdateNotes(notes string) error {
	notes = strings.TrimSpace(notes)
	if len(notes) > MaxNotesLen {
		return ErrSessionNotesTooLong
	}
	s.Notes = notes
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Validate checks the invariants a persisted session must hold.
func (s *FastingSession) Validate() error {
	if strings.TrimSpace(s.UserID) == "" {
		return ErrSessionInvalidUserID
	}
	if s.DurationHours <= 0 {
		return ErrInvalidDuration
	}
	if s.ActualEndTime != nil && s.ActualEndTime.Before(s.StartTime) {
		return ErrInvalidEndTime
	}
	return nil
}

func hoursToDuration(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
