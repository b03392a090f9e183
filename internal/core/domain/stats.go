package domain

import (
	"sort"
	"time"
)

const dateLayout = "2006-01-02"

type FastingStats struct {
	TotalFasts      int     `json:"total_fasts"`
	CompletedFasts  int     `json:"completed_fasts"`
	EndedFasts      int     `json:"ended_fasts"`
	TotalHours      float64 `json:"total_hours"`
	LongestFast     float64 `json:"longest_fast"`
	AverageDuration float64 `json:"average_duration"`
	CurrentStreak   int     `json:"current_streak"`
	LongestStreak   int     `json:"longest_streak"`
	SuccessRate     float64 `json:"success_rate"`
}

// AggregateStats summarizes a user's session history. Calendar days are taken in loc.
func AggregateStats(sessions []*FastingSession, now time.Time, loc *time.Location) FastingStats {
	if loc == nil {
		loc = time.UTC
	}

	stats := FastingStats{
		TotalFasts:  len(sessions),
		SuccessRate: SuccessRate(sessions),
	}

	for _, s := range sessions {
		if s.Status == StatusCompleted {
			stats.CompletedFasts++
		}
		if !s.HasEnded() {
			continue
		}
		h := s.Hours()
		stats.EndedFasts++
		stats.TotalHours += h
		if h > stats.LongestFast {
			stats.LongestFast = h
		}
	}

	if stats.EndedFasts > 0 {
		stats.AverageDuration = stats.TotalHours / float64(stats.EndedFasts)
	}

	days := distinctStartDays(sessions, loc)
	stats.CurrentStreak = currentStreak(days, now.In(loc))
	stats.LongestStreak = longestStreak(days)

	return stats
}

// SuccessRate is the share of sessions that reached their planned duration, 100 with no history.
func SuccessRate(sessions []*FastingSession) float64 {
	if len(sessions) == 0 {
		return 100
	}
	completed := 0
	for _, s := range sessions {
		if s.Status == StatusCompleted {
			completed++
		}
	}
	return float64(completed) / float64(len(sessions)) * 100
}

// civilDate is a calendar day stripped of zone, so day arithmetic ignores DST.
type civilDate struct {
	t time.Time
}

func dateOf(t time.Time, loc *time.Location) civilDate {
	y, m, d := t.In(loc).Date()
	return civilDate{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (c civilDate) daysSince(other civilDate) int {
	return int(c.t.Sub(other.t).Hours() / 24)
}

func (c civilDate) String() string {
	return c.t.Format(dateLayout)
}

// distinctStartDays returns the calendar days with at least one session start, newest first.
func distinctStartDays(sessions []*FastingSession, loc *time.Location) []civilDate {
	seen := make(map[string]bool)
	var days []civilDate

	for _, s := range sessions {
		d := dateOf(s.StartTime, loc)
		if seen[d.String()] {
			continue
		}
		seen[d.String()] = true
		days = append(days, d)
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].t.After(days[j].t)
	})
	return days
}

// currentStreak walks days newest first; day i must be exactly today-i.
func currentStreak(days []civilDate, now time.Time) int {
	today := dateOf(now, now.Location())
	streak := 0
	for i, d := range days {
		if today.daysSince(d) != i {
			break
		}
		streak++
	}
	return streak
}

func longestStreak(days []civilDate) int {
	if len(days) == 0 {
		return 0
	}

	longest := 1
	run := 1
	for i := 0; i < len(days)-1; i++ {
		if days[i].daysSince(days[i+1]) == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// ImprovementWeeks counts consecutive most recent weeks (Monday based, in loc)
// whose average ended-fast duration beat the week before.
func ImprovementWeeks(sessions []*FastingSession, now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}

	totals := make(map[string]float64)
	counts := make(map[string]int)
	for _, s := range sessions {
		if !s.HasEnded() {
			continue
		}
		key := weekStart(dateOf(s.StartTime, loc)).String()
		totals[key] += s.Hours()
		counts[key]++
	}

	avg := func(week civilDate) (float64, bool) {
		c := counts[week.String()]
		if c == 0 {
			return 0, false
		}
		return totals[week.String()] / float64(c), true
	}

	week := weekStart(dateOf(now, loc))
	improving := 0
	for {
		cur, ok := avg(week)
		if !ok {
			break
		}
		prevWeek := civilDate{t: week.t.AddDate(0, 0, -7)}
		prev, ok := avg(prevWeek)
		if !ok || cur <= prev {
			break
		}
		improving++
		week = prevWeek
	}
	return improving
}

func weekStart(d civilDate) civilDate {
	offset := (int(d.t.Weekday()) + 6) % 7
	return civilDate{t: d.t.AddDate(0, 0, -offset)}
}
