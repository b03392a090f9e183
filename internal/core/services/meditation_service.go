package services

import (
	"context"
	"fmt"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
)

type MeditationService struct {
	store        domain.DeviceStore
	settingsRepo domain.SettingsRepository
	clock        domain.Clock
}

func NewMeditationService(store domain.DeviceStore, settingsRepo domain.SettingsRepository, clock domain.Clock) *MeditationService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &MeditationService{
		store:        store,
		settingsRepo: settingsRepo,
		clock:        clock,
	}
}

func meditationKey(userID string) string {
	return fmt.Sprintf("meditation-stats:%s", userID)
}

// Stats reads the user's counters. Missing or unreadable data reads as zero.
func (s *MeditationService) Stats(ctx context.Context, userID string) (*domain.MeditationStats, error) {
	today, err := s.today(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	current := stats.Current(today)
	return &current, nil
}

func (s *MeditationService) Record(ctx context.Context, userID string, minutes int) (*domain.MeditationStats, error) {
	today, err := s.today(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := stats.Record(minutes, today); err != nil {
		return nil, err
	}

	if err := s.store.SetJSON(ctx, meditationKey(userID), stats, 0); err != nil {
		return nil, fmt.Errorf("meditation service: failed to save stats: %w", err)
	}
	return stats, nil
}

func (s *MeditationService) load(ctx context.Context, userID string) (*domain.MeditationStats, error) {
	var stats domain.MeditationStats
	if _, err := s.store.GetJSON(ctx, meditationKey(userID), &stats); err != nil {
		return nil, fmt.Errorf("meditation service: failed to load stats: %w", err)
	}
	return &stats, nil
}

func (s *MeditationService) today(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", domain.ErrUnauthenticated
	}
	loc, err := userLocation(ctx, s.settingsRepo, userID)
	if err != nil {
		return "", err
	}
	return domain.DateKey(s.clock.Now(), loc), nil
}

type Affirmation struct {
	Text string `json:"text"`
	Date string `json:"date"`
}

// Affirmation returns the line of the day in the user's timezone.
func (s *MeditationService) Affirmation(ctx context.Context, userID string) (*Affirmation, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	loc, err := userLocation(ctx, s.settingsRepo, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	return &Affirmation{
		Text: domain.DailyAffirmation(now, loc),
		Date: domain.DateKey(now, loc),
	}, nil
}
