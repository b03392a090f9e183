package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
)

var _ domain.SettingsRepository = (*PostgresSettingsRepository)(nil)

type PostgresSettingsRepository struct {
	db *sqlx.DB
}

func NewPostgresSettingsRepository(db *sqlx.DB) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{db: db}
}

type settingsRow struct {
	UserID    string    `db:"user_id"`
	Settings  string    `db:"settings"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Get decodes the stored document over the defaults, so keys added later
// and unreadable documents both fall back to default values.
func (r *PostgresSettingsRepository) Get(ctx context.Context, userID string) (*domain.Settings, error) {
	var row settingsRow
	query := `SELECT user_id, settings::text AS settings, updated_at FROM user_settings WHERE user_id = $1`

	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("repository: get settings failed: %w", err)
	}

	s := domain.DefaultSettings(userID)
	if err := json.Unmarshal([]byte(row.Settings), s); err != nil {
		s = domain.DefaultSettings(userID)
	}
	s.UserID = userID
	updated := row.UpdatedAt
	s.UpdatedAt = &updated
	return s, nil
}

func (r *PostgresSettingsRepository) Save(ctx context.Context, s *domain.Settings) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("repository: encode settings: %w", err)
	}

	updated := time.Now().UTC()
	if s.UpdatedAt != nil {
		updated = *s.UpdatedAt
	}

	query := `
		INSERT INTO user_settings (user_id, settings, updated_at)
		VALUES ($1, $2::text::jsonb, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			settings = EXCLUDED.settings,
			updated_at = EXCLUDED.updated_at`

	if _, err := r.db.ExecContext(ctx, query, s.UserID, string(doc), updated); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("repository: save settings failed: %w", err)
	}
	return nil
}
