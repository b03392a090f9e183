package domain

import (
	"fmt"
	"math"
	"sort"
	"time"
)

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

const (
	DefaultTargetHours    = 16
	DefaultStartHour      = 20
	MinRecommendedHours   = 12
	MaxRecommendedHours   = 24
	trendWindow           = 5
	trendUpperRatio       = 1.1
	trendLowerRatio       = 0.9
	baseConfidence        = 60
	confidencePerSession  = 2
	maxConfidence         = 95
	lowSuccessThreshold   = 70
	levelUpSuccessRate    = 85
	topPerformerRate      = 90
	advancedFasterAverage = 20
)

// CoachSignals are the inputs the rule table is keyed on.
type CoachSignals struct {
	SuccessRate        float64 `json:"success_rate"`
	AverageHours       int     `json:"average_hours"`
	Trend              Trend   `json:"trend"`
	PreferredStartHour int     `json:"preferred_start_hour"`
	SessionCount       int     `json:"session_count"`
}

type Insight struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

type Recommendation struct {
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Suggestion   string       `json:"suggestion"`
	TargetHours  int          `json:"target_hours"`
	NextFastTime time.Time    `json:"next_fast_time"`
	Confidence   int          `json:"confidence"`
	Signals      CoachSignals `json:"signals"`
	Insights     []Insight    `json:"insights"`
}

// CoachRule is one row of the recommendation table. Rules are tried in order.
type CoachRule struct {
	Name        string
	Matches     func(CoachSignals) bool
	Title       string
	Description string
	Suggestion  func(sig CoachSignals, target int) string
	TargetDelta int
}

var CoachRules = []CoachRule{
	{
		Name:        "build_consistency",
		Matches:     func(s CoachSignals) bool { return s.SuccessRate < lowSuccessThreshold },
		Title:       "Let's Build Consistency",
		Description: "Your success rate is below optimal. I recommend shorter, more achievable fasts.",
		Suggestion: func(s CoachSignals, target int) string {
			return fmt.Sprintf("Try a %d:%d protocol starting at %s", target, 24-target, FormatHour(s.PreferredStartHour))
		},
		TargetDelta: -2,
	},
	{
		Name: "level_up",
		Matches: func(s CoachSignals) bool {
			return s.Trend == TrendImproving && s.SuccessRate > levelUpSuccessRate
		},
		Title:       "Ready to Level Up!",
		Description: "You're crushing it! Your body is adapting well to fasting.",
		Suggestion: func(_ CoachSignals, target int) string {
			return fmt.Sprintf("Extend to %d hours for enhanced autophagy benefits", target)
		},
		TargetDelta: 2,
	},
	{
		Name:        "recalibrate",
		Matches:     func(s CoachSignals) bool { return s.Trend == TrendDeclining },
		Title:       "Time to Recalibrate",
		Description: "I've noticed some challenges lately. Let's adjust your approach.",
		Suggestion: func(_ CoachSignals, _ int) string {
			return "Take a 2-day break, then restart with your comfortable duration"
		},
	},
	{
		Name:        "maintain",
		Matches:     func(CoachSignals) bool { return true },
		Title:       "Maintain Your Rhythm",
		Description: "You've found your sweet spot! Consistency is key.",
		Suggestion: func(s CoachSignals, target int) string {
			return fmt.Sprintf("Continue with %d-hour fasts at %s", target, FormatHour(s.PreferredStartHour))
		},
	},
}

// DeriveSignals reads the coach inputs from a session history in any order.
func DeriveSignals(sessions []*FastingSession, loc *time.Location) CoachSignals {
	sessions = SortRecentFirst(sessions)
	return CoachSignals{
		SuccessRate:        SuccessRate(sessions),
		AverageHours:       averageHours(sessions),
		Trend:              DetectTrend(sessions),
		PreferredStartHour: PreferredStartHour(sessions, loc),
		SessionCount:       len(sessions),
	}
}

// Recommend picks the first matching rule for the history.
func Recommend(sessions []*FastingSession, now time.Time, loc *time.Location) Recommendation {
	if loc == nil {
		loc = time.UTC
	}
	return RecommendFromSignals(DeriveSignals(sessions, loc), now, loc)
}

func RecommendFromSignals(sig CoachSignals, now time.Time, loc *time.Location) Recommendation {
	if loc == nil {
		loc = time.UTC
	}

	rule := CoachRules[len(CoachRules)-1]
	for _, r := range CoachRules {
		if r.Matches(sig) {
			rule = r
			break
		}
	}

	target := clampHours(sig.AverageHours + rule.TargetDelta)

	return Recommendation{
		Title:        rule.Title,
		Description:  rule.Description,
		Suggestion:   rule.Suggestion(sig, target),
		TargetHours:  target,
		NextFastTime: NextStartAt(now, sig.PreferredStartHour, loc),
		Confidence:   confidence(sig.SessionCount),
		Signals:      sig,
		Insights:     Insights(sig),
	}
}

func Insights(sig CoachSignals) []Insight {
	insights := []Insight{}

	if sig.SuccessRate > topPerformerRate {
		insights = append(insights, Insight{Text: "90%+ success rate - You're in the top 10% of fasters!", Type: "success"})
	}
	if sig.AverageHours > advancedFasterAverage {
		insights = append(insights, Insight{Text: "Advanced faster - Your body efficiently uses fat for fuel", Type: "achievement"})
	}
	if sig.Trend == TrendImproving {
		insights = append(insights, Insight{Text: "Upward trend detected - Keep up the momentum!", Type: "positive"})
	}
	if sig.PreferredStartHour >= 18 && sig.PreferredStartHour <= 20 {
		insights = append(insights, Insight{Text: "Perfect timing - Evening fasts align with circadian rhythm", Type: "info"})
	}

	return insights
}

// DetectTrend compares the 5 most recent sessions with the 5 before them.
// sessions must be ordered most recent first.
func DetectTrend(sessions []*FastingSession) Trend {
	if len(sessions) < 2 {
		return TrendStable
	}

	recent := window(sessions, 0, trendWindow)
	older := window(sessions, trendWindow, 2*trendWindow)

	recentAvg := float64(averageHours(recent))
	olderAvg := float64(averageHours(older))

	switch {
	case recentAvg > olderAvg*trendUpperRatio:
		return TrendImproving
	case recentAvg < olderAvg*trendLowerRatio:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// PreferredStartHour is the most frequent local start hour; ties go to the earliest hour.
func PreferredStartHour(sessions []*FastingSession, loc *time.Location) int {
	if len(sessions) == 0 {
		return DefaultStartHour
	}
	if loc == nil {
		loc = time.UTC
	}

	var counts [24]int
	for _, s := range sessions {
		counts[s.StartTime.In(loc).Hour()]++
	}

	best := 0
	for h := 1; h < 24; h++ {
		if counts[h] > counts[best] {
			best = h
		}
	}
	return best
}

// NextStartAt is the next occurrence of hour:00 in loc strictly after now.
func NextStartAt(now time.Time, hour int, loc *time.Location) time.Time {
	local := now.In(loc)
	candidate := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !local.Before(candidate) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

// FormatHour renders an hour of the day on a 12h clock, e.g. 20 -> "8:00 PM".
func FormatHour(hour int) string {
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	display := hour
	if hour > 12 {
		display = hour - 12
	}
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:00 %s", display, period)
}

// averageHours is the rounded mean of whole fasted hours, DefaultTargetHours with no ended sessions.
func averageHours(sessions []*FastingSession) int {
	total := 0.0
	n := 0
	for _, s := range sessions {
		if !s.HasEnded() {
			continue
		}
		total += math.Floor(s.Hours())
		n++
	}
	if n == 0 {
		return DefaultTargetHours
	}
	return int(math.Round(total / float64(n)))
}

// SortRecentFirst returns a copy of sessions ordered by start time, newest first.
func SortRecentFirst(sessions []*FastingSession) []*FastingSession {
	sorted := make([]*FastingSession, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.After(sorted[j].StartTime)
	})
	return sorted
}

func window(sessions []*FastingSession, from, to int) []*FastingSession {
	if from >= len(sessions) {
		return nil
	}
	if to > len(sessions) {
		to = len(sessions)
	}
	return sessions[from:to]
}

func clampHours(h int) int {
	if h < MinRecommendedHours {
		return MinRecommendedHours
	}
	if h > MaxRecommendedHours {
		return MaxRecommendedHours
	}
	return h
}

func confidence(sessions int) int {
	c := baseConfidence + confidencePerSession*sessions
	if c > maxConfidence {
		return maxConfidence
	}
	return c
}
