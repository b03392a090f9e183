package services

import (
	"context"
	"time"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
)

type SettingsService struct {
	repo domain.SettingsRepository
}

func NewSettingsService(repo domain.SettingsRepository) *SettingsService {
	return &SettingsService{
		repo: repo,
	}
}

// Get returns the stored settings or the defaults when the user never saved any.
func (s *SettingsService) Get(ctx context.Context, userID string) (*domain.Settings, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}

	settings, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return domain.DefaultSettings(userID), nil
	}
	return settings, nil
}

func (s *SettingsService) Save(ctx context.Context, userID string, settings *domain.Settings) (*domain.Settings, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}

	settings.UserID = userID
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	settings.UpdatedAt = &now

	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
