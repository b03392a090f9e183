package services

import (
	"context"
	"errors"
	"time"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
	"github.com/google/uuid"
)

const defaultMoodListLimit = 30

type MoodService struct {
	repo         domain.MoodRepository
	settingsRepo domain.SettingsRepository
	clock        domain.Clock
}

func NewMoodService(repo domain.MoodRepository, settingsRepo domain.SettingsRepository, clock domain.Clock) *MoodService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &MoodService{
		repo:         repo,
		settingsRepo: settingsRepo,
		clock:        clock,
	}
}

type SaveMoodInput struct {
	UserID   string
	Date     string
	Mood     string
	Energy   string
	Symptoms []string
	Note     string
}

// Save writes the entry for one day, replacing any earlier entry for it.
// An empty Date means today in the user's timezone; later days are refused.
func (s *MoodService) Save(ctx context.Context, input SaveMoodInput) (*domain.MoodEntry, error) {
	if input.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}

	loc, err := userLocation(ctx, s.settingsRepo, input.UserID)
	if err != nil {
		return nil, err
	}

	today := domain.DateKey(s.clock.Now(), loc)
	date := input.Date
	if date == "" {
		date = today
	} else if _, err := time.Parse(time.DateOnly, date); err != nil {
		return nil, domain.ErrInvalidDate
	}
	// Keys are zero-padded, so lexical order is calendar order.
	if date > today {
		return nil, domain.ErrInvalidDate
	}

	entry, err := domain.NewMoodEntry(input.UserID, date, input.Mood, input.Energy, input.Symptoms, input.Note)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByDate(ctx, input.UserID, date)
	switch {
	case err == nil:
		entry.ID = existing.ID
		entry.CreatedAt = existing.CreatedAt
	case errors.Is(err, domain.ErrMoodEntryNotFound):
		entry.ID = uuid.NewString()
	default:
		return nil, err
	}

	if err := s.repo.Upsert(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *MoodService) Today(ctx context.Context, userID string) (*domain.MoodEntry, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}

	loc, err := userLocation(ctx, s.settingsRepo, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByDate(ctx, userID, domain.DateKey(s.clock.Now(), loc))
}

func (s *MoodService) List(ctx context.Context, userID string, limit int) ([]*domain.MoodEntry, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if limit <= 0 {
		limit = defaultMoodListLimit
	}
	return s.repo.ListByUser(ctx, userID, limit)
}

func (s *MoodService) Summary(ctx context.Context, userID string, days int) (*domain.MoodSummary, error) {
	if days == 0 {
		days = defaultHistoryDays
	}
	if days < 1 || days > domain.MaxHistoryDays {
		return nil, domain.ErrInvalidHistoryDays
	}
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}

	loc, err := userLocation(ctx, s.settingsRepo, userID)
	if err != nil {
		return nil, err
	}

	from := domain.DateKey(s.clock.Now().In(loc).AddDate(0, 0, -(days-1)), loc)
	entries, err := s.repo.ListSince(ctx, userID, from)
	if err != nil {
		return nil, err
	}

	summary := domain.SummarizeMoods(entries)
	return &summary, nil
}
