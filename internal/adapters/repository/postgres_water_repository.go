package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
)

var _ domain.WaterRepository = (*PostgresWaterRepository)(nil)

// Dates travel as YYYY-MM-DD text and are cast on the server, so the DATE
// column never goes through a time.Time and a time zone.
type PostgresWaterRepository struct {
	db *sqlx.DB
}

func NewPostgresWaterRepository(db *sqlx.DB) *PostgresWaterRepository {
	return &PostgresWaterRepository{db: db}
}

const waterColumns = `id, user_id, date::text AS date, cups, logged_at, updated_at`

func (r *PostgresWaterRepository) GetByDate(ctx context.Context, userID string, date string) (*domain.WaterLog, error) {
	var w domain.WaterLog
	query := `SELECT ` + waterColumns + ` FROM water_logs WHERE user_id = $1 AND date = $2::text::date`

	if err := r.db.GetContext(ctx, &w, query, userID, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("repository: get water log failed: %w", err)
	}
	return &w, nil
}

func (r *PostgresWaterRepository) Upsert(ctx context.Context, w *domain.WaterLog) error {
	query := `
		INSERT INTO water_logs (id, user_id, date, cups, logged_at, updated_at)
		VALUES ($1, $2, $3::text::date, $4, $5, $6)
		ON CONFLICT (user_id, date) DO UPDATE SET
			cups = EXCLUDED.cups,
			logged_at = EXCLUDED.logged_at,
			updated_at = EXCLUDED.updated_at
		RETURNING id`

	err := r.db.QueryRowxContext(ctx, query,
		w.ID, w.UserID, w.Date, w.Cups, w.LoggedAt, w.UpdatedAt,
	).Scan(&w.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("repository: upsert water log failed: %w", err)
	}
	return nil
}

func (r *PostgresWaterRepository) ListSince(ctx context.Context, userID string, from string) ([]*domain.WaterLog, error) {
	logs := []*domain.WaterLog{}
	query := `
		SELECT ` + waterColumns + `
		FROM water_logs
		WHERE user_id = $1 AND date >= $2::text::date
		ORDER BY date DESC`

	if err := r.db.SelectContext(ctx, &logs, query, userID, from); err != nil {
		return nil, fmt.Errorf("repository: list water logs failed: %w", err)
	}
	return logs, nil
}

func (r *PostgresWaterRepository) MaxDailyCups(ctx context.Context, userID string) (int, error) {
	var best int
	err := r.db.GetContext(ctx, &best,
		`SELECT COALESCE(MAX(cups), 0) FROM water_logs WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("repository: max water cups failed: %w", err)
	}
	return best, nil
}
