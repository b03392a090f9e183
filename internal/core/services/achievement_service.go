package services

import (
	"context"
	"fmt"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
)

type AchievementService struct {
	sessionRepo     domain.SessionRepository
	waterRepo       domain.WaterRepository
	achievementRepo domain.AchievementRepository
	settingsRepo    domain.SettingsRepository
	clock           domain.Clock
	catalog         []domain.Badge
}

func NewAchievementService(
	sessionRepo domain.SessionRepository,
	waterRepo domain.WaterRepository,
	achievementRepo domain.AchievementRepository,
	settingsRepo domain.SettingsRepository,
	clock domain.Clock,
) *AchievementService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &AchievementService{
		sessionRepo:     sessionRepo,
		waterRepo:       waterRepo,
		achievementRepo: achievementRepo,
		settingsRepo:    settingsRepo,
		clock:           clock,
		catalog:         domain.BadgeCatalog,
	}
}

// List evaluates the catalog against the current history without persisting anything.
func (s *AchievementService) List(ctx context.Context, userID string) (*domain.AchievementEvaluation, error) {
	eval, _, err := s.evaluate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return eval, nil
}

// Sync evaluates the catalog and stores new unlocks and progress changes.
func (s *AchievementService) Sync(ctx context.Context, userID string) (*domain.AchievementEvaluation, error) {
	eval, stored, err := s.evaluate(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	for _, bp := range eval.Badges {
		prev, exists := stored[bp.Badge.ID]
		if exists && prev.IsUnlocked == bp.Unlocked && prev.Progress == bp.Progress {
			continue
		}

		a := &domain.Achievement{
			UserID:     userID,
			BadgeID:    bp.Badge.ID,
			Progress:   bp.Progress,
			IsUnlocked: bp.Unlocked,
			UpdatedAt:  now,
		}
		if exists {
			a.ID = prev.ID
			a.UnlockedAt = prev.UnlockedAt
		}
		if bp.Unlocked && a.UnlockedAt == nil {
			unlockedAt := now
			a.UnlockedAt = &unlockedAt
		}

		if err := s.achievementRepo.Upsert(ctx, a); err != nil {
			return nil, fmt.Errorf("achievement service: failed to store %s: %w", bp.Badge.ID, err)
		}
	}

	return eval, nil
}

func (s *AchievementService) evaluate(ctx context.Context, userID string) (*domain.AchievementEvaluation, map[string]*domain.Achievement, error) {
	if userID == "" {
		return nil, nil, domain.ErrUnauthenticated
	}

	loc, err := userLocation(ctx, s.settingsRepo, userID)
	if err != nil {
		return nil, nil, err
	}

	sessions, err := s.sessionRepo.ListByUser(ctx, userID, statsHistoryLimit)
	if err != nil {
		return nil, nil, err
	}

	maxWater, err := s.waterRepo.MaxDailyCups(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	existing, err := s.achievementRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	stored := make(map[string]*domain.Achievement, len(existing))
	unlocked := make(map[string]bool)
	for _, a := range existing {
		stored[a.BadgeID] = a
		if a.IsUnlocked {
			unlocked[a.BadgeID] = true
		}
	}

	now := s.clock.Now()
	stats := domain.AggregateStats(sessions, now, loc)
	metrics := domain.NewAchievementMetrics(stats, maxWater, domain.ImprovementWeeks(sessions, now, loc))

	eval := domain.EvaluateAchievements(metrics, s.catalog, unlocked)
	return &eval, stored, nil
}
