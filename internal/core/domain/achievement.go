package domain

import (
	"errors"
	"math"
	"time"
)

var (
	ErrBadgeNotFound = errors.New("badge not found")
)

type RequirementType string

const (
	RequirementTotalFasts  RequirementType = "total_fasts"
	RequirementStreak      RequirementType = "streak"
	RequirementWaterDaily  RequirementType = "water_daily"
	RequirementTotalHours  RequirementType = "total_hours"
	RequirementLongestFast RequirementType = "longest_fast"
	RequirementImprovement RequirementType = "improvement"
)

type Requirement struct {
	Type  RequirementType `json:"type"`
	Value float64         `json:"value"`
}

type Badge struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Requirement Requirement `json:"requirement"`
	Points      int         `json:"points"`
	Color       string      `json:"color"`
}

var BadgeCatalog = []Badge{
	{ID: "first_fast", Name: "First Step", Description: "Complete your first fast", Category: "beginner",
		Requirement: Requirement{Type: RequirementTotalFasts, Value: 1}, Points: 10, Color: "#10b981"},
	{ID: "week_warrior", Name: "Week Warrior", Description: "Fast for 7 consecutive days", Category: "beginner",
		Requirement: Requirement{Type: RequirementStreak, Value: 7}, Points: 25, Color: "#f59e0b"},
	{ID: "hydration_hero", Name: "Hydration Hero", Description: "Track 64oz of water in a day", Category: "beginner",
		Requirement: Requirement{Type: RequirementWaterDaily, Value: 8}, Points: 15, Color: "#06b6d4"},
	{ID: "century_club", Name: "Century Club", Description: "Complete 100 hours of fasting", Category: "intermediate",
		Requirement: Requirement{Type: RequirementTotalHours, Value: 100}, Points: 50, Color: "#8b5cf6"},
	{ID: "extended_master", Name: "Extended Master", Description: "Complete a 24-hour fast", Category: "intermediate",
		Requirement: Requirement{Type: RequirementLongestFast, Value: 24}, Points: 40, Color: "#3b82f6"},
	{ID: "month_milestone", Name: "Month Milestone", Description: "Maintain a 30-day streak", Category: "intermediate",
		Requirement: Requirement{Type: RequirementStreak, Value: 30}, Points: 75, Color: "#ec4899"},
	{ID: "autophagy_expert", Name: "Autophagy Expert", Description: "Complete a 48-hour fast", Category: "advanced",
		Requirement: Requirement{Type: RequirementLongestFast, Value: 48}, Points: 100, Color: "#f43f5e"},
	{ID: "thousand_hours", Name: "Thousand Hour Journey", Description: "Accumulate 1000 hours of fasting", Category: "advanced",
		Requirement: Requirement{Type: RequirementTotalHours, Value: 1000}, Points: 200, Color: "#fbbf24"},
	{ID: "consistency_king", Name: "Consistency King", Description: "Complete 100 fasts", Category: "advanced",
		Requirement: Requirement{Type: RequirementTotalFasts, Value: 100}, Points: 150, Color: "#a855f7"},
	{ID: "trending_up", Name: "Always Improving", Description: "Increase average fast duration for 4 weeks", Category: "advanced",
		Requirement: Requirement{Type: RequirementImprovement, Value: 4}, Points: 80, Color: "#22c55e"},
}

func FindBadge(catalog []Badge, id string) (Badge, error) {
	for _, b := range catalog {
		if b.ID == id {
			return b, nil
		}
	}
	return Badge{}, ErrBadgeNotFound
}

// Achievement is the persisted per-user state of one badge.
type Achievement struct {
	ID         string     `json:"id" db:"id"`
	UserID     string     `json:"user_id" db:"user_id"`
	BadgeID    string     `json:"badge_id" db:"badge_id"`
	Progress   float64    `json:"progress" db:"progress"`
	IsUnlocked bool       `json:"is_unlocked" db:"is_unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty" db:"unlocked_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// AchievementMetrics maps each requirement type to the user's current value.
type AchievementMetrics map[RequirementType]float64

func NewAchievementMetrics(stats FastingStats, maxWaterDaily int, improvementWeeks int) AchievementMetrics {
	return AchievementMetrics{
		RequirementTotalFasts:  float64(stats.TotalFasts),
		RequirementStreak:      float64(stats.CurrentStreak),
		RequirementWaterDaily:  float64(maxWaterDaily),
		RequirementTotalHours:  stats.TotalHours,
		RequirementLongestFast: stats.LongestFast,
		RequirementImprovement: float64(improvementWeeks),
	}
}

type BadgeProgress struct {
	Badge    Badge   `json:"badge"`
	Progress float64 `json:"progress"`
	Unlocked bool    `json:"unlocked"`
}

type AchievementEvaluation struct {
	NewlyUnlocked []Badge         `json:"newly_unlocked"`
	Unlocked      []string        `json:"unlocked"`
	Badges        []BadgeProgress `json:"badges"`
	TotalPoints   int             `json:"total_points"`
}

// EvaluateAchievements scans the catalog once. Badges already in unlocked are
// never reported again; the rest unlock when metrics[type] >= value.
func EvaluateAchievements(metrics AchievementMetrics, catalog []Badge, unlocked map[string]bool) AchievementEvaluation {
	result := AchievementEvaluation{
		NewlyUnlocked: []Badge{},
		Unlocked:      []string{},
		Badges:        make([]BadgeProgress, 0, len(catalog)),
	}

	for _, b := range catalog {
		value := metrics[b.Requirement.Type]
		already := unlocked[b.ID]
		isUnlocked := already

		if !already && value >= b.Requirement.Value {
			isUnlocked = true
			result.NewlyUnlocked = append(result.NewlyUnlocked, b)
		}

		if isUnlocked {
			result.Unlocked = append(result.Unlocked, b.ID)
			result.TotalPoints += b.Points
		}

		result.Badges = append(result.Badges, BadgeProgress{
			Badge:    b,
			Progress: badgeProgress(value, b.Requirement.Value, isUnlocked),
			Unlocked: isUnlocked,
		})
	}

	return result
}

func badgeProgress(value, threshold float64, unlocked bool) float64 {
	if unlocked || threshold <= 0 {
		return 100
	}
	p := value / threshold * 100
	return math.Max(0, math.Min(100, p))
}
