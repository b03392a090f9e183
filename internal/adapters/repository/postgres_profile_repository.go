package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
)

var _ domain.ProfileRepository = (*PostgresProfileRepository)(nil)

type PostgresProfileRepository struct {
	db *sqlx.DB
}

func NewPostgresProfileRepository(db *sqlx.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

func (r *PostgresProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var p domain.UserProfile
	query := `
		SELECT id, user_id, full_name, age, height, weight, fasting_experience,
		       health_goals, preferred_fast_duration, created_at, updated_at
		FROM user_profiles
		WHERE user_id = $1`

	if err := r.db.GetContext(ctx, &p, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("repository: get profile failed: %w", err)
	}
	return &p, nil
}

func (r *PostgresProfileRepository) Upsert(ctx context.Context, p *domain.UserProfile) error {
	query := `
		INSERT INTO user_profiles (
			id, user_id, full_name, age, height, weight, fasting_experience,
			health_goals, preferred_fast_duration, created_at, updated_at
		) VALUES (
			:id, :user_id, :full_name, :age, :height, :weight, :fasting_experience,
			:health_goals, :preferred_fast_duration, :created_at, :updated_at
		)
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			age = EXCLUDED.age,
			height = EXCLUDED.height,
			weight = EXCLUDED.weight,
			fasting_experience = EXCLUDED.fasting_experience,
			health_goals = EXCLUDED.health_goals,
			preferred_fast_duration = EXCLUDED.preferred_fast_duration,
			updated_at = EXCLUDED.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("repository: upsert profile failed: %w", err)
	}
	return nil
}
