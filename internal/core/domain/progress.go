package domain

import (
	"fmt"
	"math"
	"time"
)

// Clock is the source of "now" for everything that depends on wall time.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type Phase struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type phaseBand struct {
	fromHours int64
	phase     Phase
}

// Ordered by fromHours; the last band whose lower bound is reached wins.
var phaseBands = []phaseBand{
	{0, Phase{Name: "INITIATION", Description: "Body adjusting"}},
	{4, Phase{Name: "ADAPTATION", Description: "Entering ketosis"}},
	{12, Phase{Name: "OPTIMIZATION", Description: "Fat burning mode"}},
	{24, Phase{Name: "DEEP KETOSIS", Description: "Cellular renewal"}},
	{48, Phase{Name: "AUTOPHAGY", Description: "Peak performance"}},
}

// PhaseFor labels an elapsed fasting time. Bands are on whole elapsed hours.
func PhaseFor(elapsedSeconds int64) Phase {
	hours := elapsedSeconds / 3600
	current := phaseBands[0].phase
	for _, b := range phaseBands {
		if hours >= b.fromHours {
			current = b.phase
		}
	}
	return current
}

type Progress struct {
	SessionID        string  `json:"session_id"`
	ElapsedSeconds   int64   `json:"elapsed_seconds"`
	RemainingSeconds int64   `json:"remaining_seconds"`
	TargetSeconds    int64   `json:"target_seconds"`
	Percent          float64 `json:"percent"`
	Elapsed          string  `json:"elapsed"`
	Remaining        string  `json:"remaining"`
	ElapsedHours     int64   `json:"elapsed_hours"`
	ElapsedMinutes   int64   `json:"elapsed_minutes"`
	ElapsedSecs      int64   `json:"elapsed_secs"`
	Phase            Phase   `json:"phase"`
	GoalReached      bool    `json:"goal_reached"`
}

// ComputeProgress derives the timer state of a session at the given instant.
// Once a session has an actual end time, now is capped to it.
func ComputeProgress(now time.Time, s *FastingSession) Progress {
	if end, ok := s.EndTime(); ok && now.After(end) {
		now = end
	}

	elapsed := int64(now.Sub(s.StartTime) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}

	target := int64(math.Round(s.DurationHours * 3600))
	remaining := target - elapsed
	if remaining < 0 {
		remaining = 0
	}

	percent := 0.0
	if target > 0 {
		percent = math.Min(100, float64(elapsed)/float64(target)*100)
	}

	return Progress{
		SessionID:        s.ID,
		ElapsedSeconds:   elapsed,
		RemainingSeconds: remaining,
		TargetSeconds:    target,
		Percent:          percent,
		Elapsed:          FormatClock(elapsed),
		Remaining:        FormatClock(remaining),
		ElapsedHours:     elapsed / 3600,
		ElapsedMinutes:   (elapsed % 3600) / 60,
		ElapsedSecs:      elapsed % 60,
		Phase:            PhaseFor(elapsed),
		GoalReached:      target > 0 && elapsed >= target,
	}
}

// FormatClock renders seconds as HH:MM:SS. Hours do not wrap at 24.
func FormatClock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
