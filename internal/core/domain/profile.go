package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrProfileNotFound       = errors.New("profile not found")
	ErrInvalidAge            = errors.New("age must be between 0 and 130")
	ErrInvalidHeight         = errors.New("height cannot be negative")
	ErrInvalidWeight         = errors.New("weight cannot be negative")
	ErrInvalidExperience     = errors.New("invalid fasting experience (must be beginner, intermediate or advanced)")
	ErrInvalidPreferredFast  = errors.New("preferred fast duration must be between 1 and 168 hours")
	ErrFullNameTooLong       = errors.New("full name is too long (max 100 chars)")
	ErrInvalidTheme          = errors.New("invalid theme (must be dark or light)")
	ErrInvalidUnits          = errors.New("invalid units")
	ErrInvalidPreferredStart = errors.New("preferred start time must be an hour between 0 and 23")
	ErrInvalidTimezone       = errors.New("invalid timezone")
)

type UserProfile struct {
	ID                    string    `json:"id" db:"id"`
	UserID                string    `json:"user_id" db:"user_id"`
	FullName              string    `json:"full_name" db:"full_name"`
	Age                   *int      `json:"age,omitempty" db:"age"`
	Height                *float64  `json:"height,omitempty" db:"height"`
	Weight                *float64  `json:"weight,omitempty" db:"weight"`
	FastingExperience     string    `json:"fasting_experience" db:"fasting_experience"`
	HealthGoals           string    `json:"health_goals" db:"health_goals"`
	PreferredFastDuration int       `json:"preferred_fast_duration" db:"preferred_fast_duration"`
	CreatedAt             time.Time `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time `json:"updated_at" db:"updated_at"`
}

func (p *UserProfile) Normalize() error {
	p.FullName = strings.TrimSpace(p.FullName)
	if len(p.FullName) > 100 {
		return ErrFullNameTooLong
	}
	if p.Age != nil && (*p.Age < 0 || *p.Age > 130) {
		return ErrInvalidAge
	}
	if p.Height != nil && *p.Height < 0 {
		return ErrInvalidHeight
	}
	if p.Weight != nil && *p.Weight < 0 {
		return ErrInvalidWeight
	}

	switch p.FastingExperience {
	case "":
		p.FastingExperience = "beginner"
	case "beginner", "intermediate", "advanced":
	default:
		return ErrInvalidExperience
	}

	if p.PreferredFastDuration == 0 {
		p.PreferredFastDuration = DefaultTargetHours
	}
	if p.PreferredFastDuration < 1 || p.PreferredFastDuration > MaxDurationHours {
		return ErrInvalidPreferredFast
	}

	p.HealthGoals = strings.TrimSpace(p.HealthGoals)
	return nil
}

type NotificationSettings struct {
	FastReminders    bool `json:"fast_reminders"`
	Achievements     bool `json:"achievements"`
	CommunityUpdates bool `json:"community_updates"`
	MoodReminders    bool `json:"mood_reminders"`
}

type UnitSettings struct {
	Weight string `json:"weight"`
	Height string `json:"height"`
	Time   string `json:"time"`
}

type PrivacySettings struct {
	ShowInLeaderboard bool `json:"show_in_leaderboard"`
	ShareProgress     bool `json:"share_progress"`
}

type FastingDefaults struct {
	DefaultDuration    int  `json:"default_duration"`
	PreferredStartTime int  `json:"preferred_start_time"`
	AutoTrackWater     bool `json:"auto_track_water"`
}

type Settings struct {
	UserID        string               `json:"user_id"`
	Notifications NotificationSettings `json:"notifications"`
	Theme         string               `json:"theme"`
	Units         UnitSettings         `json:"units"`
	Privacy       PrivacySettings      `json:"privacy"`
	Fasting       FastingDefaults      `json:"fasting"`
	Timezone      string               `json:"timezone"`
	UpdatedAt     *time.Time           `json:"updated_at,omitempty"`
}

// DefaultSettings is what a user without stored settings sees.
func DefaultSettings(userID string) *Settings {
	return &Settings{
		UserID: userID,
		Notifications: NotificationSettings{
			FastReminders:    true,
			Achievements:     true,
			CommunityUpdates: false,
			MoodReminders:    true,
		},
		Theme: "dark",
		Units: UnitSettings{Weight: "lbs", Height: "ft", Time: "12h"},
		Privacy: PrivacySettings{
			ShowInLeaderboard: true,
			ShareProgress:     true,
		},
		Fasting: FastingDefaults{
			DefaultDuration:    DefaultTargetHours,
			PreferredStartTime: DefaultStartHour,
			AutoTrackWater:     true,
		},
		Timezone: "UTC",
	}
}

func (s *Settings) Validate() error {
	if s.Theme != "dark" && s.Theme != "light" {
		return ErrInvalidTheme
	}
	if !oneOf(s.Units.Weight, "lbs", "kg") || !oneOf(s.Units.Height, "ft", "cm") || !oneOf(s.Units.Time, "12h", "24h") {
		return ErrInvalidUnits
	}
	if s.Fasting.DefaultDuration < 1 || s.Fasting.DefaultDuration > MaxDurationHours {
		return ErrInvalidPreferredFast
	}
	if s.Fasting.PreferredStartTime < 0 || s.Fasting.PreferredStartTime > 23 {
		return ErrInvalidPreferredStart
	}
	if s.Timezone == "" {
		s.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return ErrInvalidTimezone
	}
	return nil
}

// Location resolves the user's timezone, falling back to UTC.
func (s *Settings) Location() *time.Location {
	if s == nil || s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
