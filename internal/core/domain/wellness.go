package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidCups        = errors.New("cups cannot be negative")
	ErrTooManyCups        = errors.New("cups is too large (max 100)")
	ErrInvalidMood        = errors.New("invalid mood (must be excellent, good, okay, tired or struggling)")
	ErrInvalidEnergy      = errors.New("invalid energy (must be high, moderate or low)")
	ErrInvalidSymptom     = errors.New("invalid symptom")
	ErrMoodNoteTooLong    = errors.New("mood note is too long (max 1000 chars)")
	ErrMoodEntryNotFound  = errors.New("mood entry not found")
	ErrInvalidHistoryDays = errors.New("days must be between 1 and 366")
	ErrInvalidDate        = errors.New("invalid date (use YYYY-MM-DD)")
)

const (
	DailyWaterGoalCups = 8
	MaxCupsPerDay      = 100
	MaxHistoryDays     = 366
)

type WaterLog struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Date      string    `json:"date" db:"date"`
	Cups      int       `json:"cups" db:"cups"`
	LoggedAt  time.Time `json:"logged_at" db:"logged_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// EmptyWaterLog is what a day without a row reads as.
func EmptyWaterLog(userID string, date string) *WaterLog {
	return &WaterLog{UserID: userID, Date: date, Cups: 0}
}

func (w *WaterLog) GoalReached() bool {
	return w.Cups >= DailyWaterGoalCups
}

func ValidateCups(cups int) error {
	if cups < 0 {
		return ErrInvalidCups
	}
	if cups > MaxCupsPerDay {
		return ErrTooManyCups
	}
	return nil
}

// MaxDailyCups returns the largest per-day total across logs.
func MaxDailyCups(logs []*WaterLog) int {
	byDay := make(map[string]int)
	best := 0
	for _, l := range logs {
		byDay[l.Date] += l.Cups
		if byDay[l.Date] > best {
			best = byDay[l.Date]
		}
	}
	return best
}

type MoodOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value int    `json:"value"`
}

var MoodOptions = []MoodOption{
	{ID: "excellent", Label: "Excellent", Value: 5},
	{ID: "good", Label: "Good", Value: 4},
	{ID: "okay", Label: "Okay", Value: 3},
	{ID: "tired", Label: "Tired", Value: 2},
	{ID: "struggling", Label: "Struggling", Value: 1},
}

var EnergyLevels = []MoodOption{
	{ID: "high", Label: "High Energy", Value: 3},
	{ID: "moderate", Label: "Moderate", Value: 2},
	{ID: "low", Label: "Low Energy", Value: 1},
}

var Symptoms = []string{"hunger", "headache", "fatigue", "irritable", "focused", "energized", "calm", "happy"}

func IsValidMood(id string) bool {
	_, ok := optionValue(MoodOptions, id)
	return ok
}

func IsValidEnergy(id string) bool {
	_, ok := optionValue(EnergyLevels, id)
	return ok
}

func IsValidSymptom(s string) bool {
	for _, known := range Symptoms {
		if s == known {
			return true
		}
	}
	return false
}

func optionValue(options []MoodOption, id string) (int, bool) {
	for _, o := range options {
		if o.ID == id {
			return o.Value, true
		}
	}
	return 0, false
}

type MoodEntry struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Date      string    `json:"date" db:"date"`
	Mood      string    `json:"mood" db:"mood"`
	Energy    string    `json:"energy" db:"energy"`
	Symptoms  []string  `json:"symptoms" db:"-"`
	Note      string    `json:"note" db:"note"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func NewMoodEntry(userID, date, mood, energy string, symptoms []string, note string) (*MoodEntry, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrSessionInvalidUserID
	}
	if !IsValidMood(mood) {
		return nil, ErrInvalidMood
	}
	if !IsValidEnergy(energy) {
		return nil, ErrInvalidEnergy
	}

	clean, err := normalizeSymptoms(symptoms)
	if err != nil {
		return nil, err
	}

	note = strings.TrimSpace(note)
	if len(note) > MaxNotesLen {
		return nil, ErrMoodNoteTooLong
	}

	now := time.Now().UTC()
	return &MoodEntry{
		UserID:    userID,
		Date:      date,
		Mood:      mood,
		Energy:    energy,
		Symptoms:  clean,
		Note:      note,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func normalizeSymptoms(symptoms []string) ([]string, error) {
	seen := make(map[string]bool)
	clean := []string{}
	for _, s := range symptoms {
		s = strings.ToLower(strings.TrimSpace(s))
		if !IsValidSymptom(s) {
			return nil, ErrInvalidSymptom
		}
		if !seen[s] {
			seen[s] = true
			clean = append(clean, s)
		}
	}
	return clean, nil
}

type MoodSummary struct {
	Entries       int            `json:"entries"`
	AverageMood   float64        `json:"average_mood"`
	AverageEnergy float64        `json:"average_energy"`
	SymptomCounts map[string]int `json:"symptom_counts"`
}

func SummarizeMoods(entries []*MoodEntry) MoodSummary {
	summary := MoodSummary{SymptomCounts: map[string]int{}}
	if len(entries) == 0 {
		return summary
	}

	moodTotal, energyTotal := 0, 0
	for _, e := range entries {
		m, _ := optionValue(MoodOptions, e.Mood)
		en, _ := optionValue(EnergyLevels, e.Energy)
		moodTotal += m
		energyTotal += en
		for _, s := range e.Symptoms {
			summary.SymptomCounts[s]++
		}
	}

	summary.Entries = len(entries)
	summary.AverageMood = float64(moodTotal) / float64(len(entries))
	summary.AverageEnergy = float64(energyTotal) / float64(len(entries))
	return summary
}

// DateKey formats t as a calendar day in loc.
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(dateLayout)
}
