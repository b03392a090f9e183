package services

import (
	"context"
	"errors"
	"time"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
	"github.com/google/uuid"
)

type ProfileService struct {
	repo domain.ProfileRepository
}

func NewProfileService(repo domain.ProfileRepository) *ProfileService {
	return &ProfileService{
		repo: repo,
	}
}

type SaveProfileInput struct {
	UserID                string
	FullName              string
	Age                   *int
	Height                *float64
	Weight                *float64
	FastingExperience     string
	HealthGoals           string
	PreferredFastDuration int
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.repo.GetByUserID(ctx, userID)
}

// Save creates the user's profile on first call and replaces it afterwards.
func (s *ProfileService) Save(ctx context.Context, input SaveProfileInput) (*domain.UserProfile, error) {
	if input.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}

	profile := &domain.UserProfile{
		UserID:                input.UserID,
		FullName:              input.FullName,
		Age:                   input.Age,
		Height:                input.Height,
		Weight:                input.Weight,
		FastingExperience:     input.FastingExperience,
		HealthGoals:           input.HealthGoals,
		PreferredFastDuration: input.PreferredFastDuration,
	}
	if err := profile.Normalize(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	existing, err := s.repo.GetByUserID(ctx, input.UserID)
	switch {
	case err == nil:
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
	case errors.Is(err, domain.ErrProfileNotFound):
		profile.ID = uuid.NewString()
		profile.CreatedAt = now
	default:
		return nil, err
	}
	profile.UpdatedAt = now

	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
