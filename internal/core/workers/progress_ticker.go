package workers

import (
	"context"
	"time"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
)

const DefaultTickInterval = time.Second

// ProgressTicker recomputes a session's progress on a fixed interval.
type ProgressTicker struct {
	clock    domain.Clock
	interval time.Duration
}

func NewProgressTicker(clock domain.Clock, interval time.Duration) *ProgressTicker {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &ProgressTicker{
		clock:    clock,
		interval: interval,
	}
}

// Run emits the progress immediately and then on every tick until ctx is done
// or emit returns false. The underlying ticker is always stopped on return.
func (t *ProgressTicker) Run(ctx context.Context, session *domain.FastingSession, emit func(domain.Progress) bool) error {
	if !emit(domain.ComputeProgress(t.clock.Now(), session)) {
		return nil
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !emit(domain.ComputeProgress(t.clock.Now(), session)) {
				return nil
			}
		}
	}
}
