package services

import (
	"context"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
	"github.com/google/uuid"
)

const defaultHistoryDays = 7

type WaterService struct {
	repo         domain.WaterRepository
	settingsRepo domain.SettingsRepository
	clock        domain.Clock
	queue        AchievementQueue
}

func NewWaterService(repo domain.WaterRepository, settingsRepo domain.SettingsRepository, clock domain.Clock, queue AchievementQueue) *WaterService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &WaterService{
		repo:         repo,
		settingsRepo: settingsRepo,
		clock:        clock,
		queue:        queue,
	}
}

// Today returns the day's log, zero cups when nothing was logged.
func (s *WaterService) Today(ctx context.Context, userID string) (*domain.WaterLog, error) {
	today, err := s.today(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, userID, today)
}

func (s *WaterService) SetToday(ctx context.Context, userID string, cups int) (*domain.WaterLog, error) {
	if err := domain.ValidateCups(cups); err != nil {
		return nil, err
	}

	today, err := s.today(ctx, userID)
	if err != nil {
		return nil, err
	}

	log, err := s.load(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, log, cups)
}

// AddCups applies delta to today's total. The total never drops below zero.
func (s *WaterService) AddCups(ctx context.Context, userID string, delta int) (*domain.WaterLog, error) {
	today, err := s.today(ctx, userID)
	if err != nil {
		return nil, err
	}

	log, err := s.load(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	cups := log.Cups + delta
	if cups < 0 {
		cups = 0
	}
	if err := domain.ValidateCups(cups); err != nil {
		return nil, err
	}
	return s.save(ctx, log, cups)
}

// History returns the logs of the last days days, today included, newest first.
func (s *WaterService) History(ctx context.Context, userID string, days int) ([]*domain.WaterLog, error) {
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
	logs, err := s.repo.ListSince(ctx, userID, from)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []*domain.WaterLog{}
	}
	return logs, nil
}

func (s *WaterService) today(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", domain.ErrUnauthenticated
	}
	loc, err := userLocation(ctx, s.settingsRepo, userID)
	if err != nil {
		return "", err
	}
	return domain.DateKey(s.clock.Now(), loc), nil
}

func (s *WaterService) load(ctx context.Context, userID, date string) (*domain.WaterLog, error) {
	log, err := s.repo.GetByDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if log == nil {
		return domain.EmptyWaterLog(userID, date), nil
	}
	return log, nil
}

func (s *WaterService) save(ctx context.Context, log *domain.WaterLog, cups int) (*domain.WaterLog, error) {
	now := s.clock.Now().UTC()
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	log.Cups = cups
	log.UpdatedAt = now
	if log.LoggedAt.IsZero() {
		log.LoggedAt = now
	}

	if err := s.repo.Upsert(ctx, log); err != nil {
		return nil, err
	}

	if s.queue != nil {
		s.queue.Enqueue(log.UserID)
	}
	return log, nil
}
