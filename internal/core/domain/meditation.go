package domain

import (
	"errors"
	"time"
)

var ErrInvalidMeditationMinutes = errors.New("meditation minutes must be between 1 and 600")

const MaxMeditationMinutes = 600

type MeditationStats struct {
	TotalMinutes      int    `json:"total_minutes"`
	SessionsCompleted int    `json:"sessions_completed"`
	CurrentStreak     int    `json:"current_streak"`
	LastSessionDate   string `json:"last_session_date,omitempty"`
}

// Record adds a finished meditation on the given day. A second session on the
// same day does not extend the streak; a missed day resets it to 1.
func (m *MeditationStats) Record(minutes int, day string) error {
	if minutes < 1 || minutes > MaxMeditationMinutes {
		return ErrInvalidMeditationMinutes
	}

	m.TotalMinutes += minutes
	m.SessionsCompleted++

	switch gap := daysBetweenKeys(m.LastSessionDate, day); {
	case m.LastSessionDate == "" || gap > 1:
		m.CurrentStreak = 1
	case gap == 1:
		m.CurrentStreak++
	}
	if m.LastSessionDate == "" || day > m.LastSessionDate {
		m.LastSessionDate = day
	}
	return nil
}

// Current hides a streak whose last day is neither today nor yesterday.
func (m MeditationStats) Current(today string) MeditationStats {
	if m.LastSessionDate != "" && daysBetweenKeys(m.LastSessionDate, today) > 1 {
		m.CurrentStreak = 0
	}
	return m
}

func daysBetweenKeys(from, to string) int {
	a, err := time.Parse(dateLayout, from)
	if err != nil {
		return -1
	}
	b, err := time.Parse(dateLayout, to)
	if err != nil {
		return -1
	}
	return int(b.Sub(a).Hours() / 24)
}
