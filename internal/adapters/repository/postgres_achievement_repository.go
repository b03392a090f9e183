package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
)

var _ domain.AchievementRepository = (*PostgresAchievementRepository)(nil)

type PostgresAchievementRepository struct {
	db *sqlx.DB
}

func NewPostgresAchievementRepository(db *sqlx.DB) *PostgresAchievementRepository {
	return &PostgresAchievementRepository{db: db}
}

func (r *PostgresAchievementRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Achievement, error) {
	achievements := []*domain.Achievement{}
	query := `
		SELECT id, user_id, badge_id, progress, is_unlocked, unlocked_at, updated_at
		FROM achievements
		WHERE user_id = $1
		ORDER BY badge_id`

	if err := r.db.SelectContext(ctx, &achievements, query, userID); err != nil {
		return nil, fmt.Errorf("repository: list achievements failed: %w", err)
	}
	return achievements, nil
}

// Upsert never relocks a badge and keeps the first unlock time.
func (r *PostgresAchievementRepository) Upsert(ctx context.Context, a *domain.Achievement) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	query := `
		INSERT INTO achievements (id, user_id, badge_id, progress, is_unlocked, unlocked_at, updated_at)
		VALUES (:id, :user_id, :badge_id, :progress, :is_unlocked, :unlocked_at, :updated_at)
		ON CONFLICT (user_id, badge_id) DO UPDATE SET
			progress = EXCLUDED.progress,
			is_unlocked = achievements.is_unlocked OR EXCLUDED.is_unlocked,
			unlocked_at = COALESCE(achievements.unlocked_at, EXCLUDED.unlocked_at),
			updated_at = EXCLUDED.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("repository: upsert achievement failed: %w", err)
	}
	return nil
}
