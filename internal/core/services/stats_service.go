package services

import (
	"context"
	"time"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
)

const (
	statsHistoryLimit = 1000
	coachHistoryLimit = 30
)

type StatsService struct {
	sessionRepo  domain.SessionRepository
	settingsRepo domain.SettingsRepository
	clock        domain.Clock
}

func NewStatsService(sessionRepo domain.SessionRepository, settingsRepo domain.SettingsRepository, clock domain.Clock) *StatsService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &StatsService{
		sessionRepo:  sessionRepo,
		settingsRepo: settingsRepo,
		clock:        clock,
	}
}

func (s *StatsService) Summary(ctx context.Context, userID string) (*domain.FastingStats, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}

	loc, err := userLocation(ctx, s.settingsRepo, userID)
	if err != nil {
		return nil, err
	}

	sessions, err := s.sessionRepo.ListByUser(ctx, userID, statsHistoryLimit)
	if err != nil {
		return nil, err
	}

	stats := domain.AggregateStats(sessions, s.clock.Now(), loc)
	return &stats, nil
}

func (s *StatsService) Recommendation(ctx context.Context, userID string) (*domain.Recommendation, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}

	loc, err := userLocation(ctx, s.settingsRepo, userID)
	if err != nil {
		return nil, err
	}

	sessions, err := s.sessionRepo.ListByUser(ctx, userID, coachHistoryLimit)
	if err != nil {
		return nil, err
	}

	rec := domain.Recommend(sessions, s.clock.Now(), loc)
	return &rec, nil
}

// userLocation resolves the calendar used for day based stats. Users without
// settings get UTC.
func userLocation(ctx context.Context, repo domain.SettingsRepository, userID string) (*time.Location, error) {
	if repo == nil {
		return time.UTC, nil
	}

	settings, err := repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return settings.Location(), nil
}
