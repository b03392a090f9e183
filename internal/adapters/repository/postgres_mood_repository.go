package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
)

var _ domain.MoodRepository = (*PostgresMoodRepository)(nil)

type PostgresMoodRepository struct {
	db *sqlx.DB
}

func NewPostgresMoodRepository(db *sqlx.DB) *PostgresMoodRepository {
	return &PostgresMoodRepository{db: db}
}

// moodRow carries the TEXT[] column, read back as its text literal.
type moodRow struct {
	ID        string         `db:"id"`
	UserID    string         `db:"user_id"`
	Date      string         `db:"date"`
	Mood      string         `db:"mood"`
	Energy    string         `db:"energy"`
	Symptoms  pq.StringArray `db:"symptoms"`
	Note      string         `db:"note"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (row moodRow) toDomain() *domain.MoodEntry {
	symptoms := []string(row.Symptoms)
	if symptoms == nil {
		symptoms = []string{}
	}
	return &domain.MoodEntry{
		ID:        row.ID,
		UserID:    row.UserID,
		Date:      row.Date,
		Mood:      row.Mood,
		Energy:    row.Energy,
		Symptoms:  symptoms,
		Note:      row.Note,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

const moodColumns = `id, user_id, date::text AS date, mood, energy, symptoms::text AS symptoms,
	note, created_at, updated_at`

func (r *PostgresMoodRepository) Upsert(ctx context.Context, e *domain.MoodEntry) error {
	symptoms, err := pq.StringArray(e.Symptoms).Value()
	if err != nil {
		return fmt.Errorf("repository: encode symptoms: %w", err)
	}

	query := `
		INSERT INTO mood_entries (id, user_id, date, mood, energy, symptoms, note, created_at, updated_at)
		VALUES ($1, $2, $3::text::date, $4, $5, $6::text::text[], $7, $8, $9)
		ON CONFLICT (user_id, date) DO UPDATE SET
			mood = EXCLUDED.mood,
			energy = EXCLUDED.energy,
			symptoms = EXCLUDED.symptoms,
			note = EXCLUDED.note,
			updated_at = EXCLUDED.updated_at
		RETURNING id`

	err = r.db.QueryRowxContext(ctx, query,
		e.ID, e.UserID, e.Date, e.Mood, e.Energy, symptoms, e.Note, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("repository: upsert mood failed: %w", err)
	}
	return nil
}

func (r *PostgresMoodRepository) GetByDate(ctx context.Context, userID string, date string) (*domain.MoodEntry, error) {
	var row moodRow
	query := `SELECT ` + moodColumns + ` FROM mood_entries WHERE user_id = $1 AND date = $2::text::date`

	if err := r.db.GetContext(ctx, &row, query, userID, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMoodEntryNotFound
		}
		return nil, fmt.Errorf("repository: get mood failed: %w", err)
	}
	return row.toDomain(), nil
}

func (r *PostgresMoodRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.MoodEntry, error) {
	var lim sql.NullInt64
	if limit > 0 {
		lim = sql.NullInt64{Int64: int64(limit), Valid: true}
	}

	query := `
		SELECT ` + moodColumns + `
		FROM mood_entries
		WHERE user_id = $1
		ORDER BY date DESC
		LIMIT $2`
	return r.list(ctx, query, userID, lim)
}

func (r *PostgresMoodRepository) ListSince(ctx context.Context, userID string, from string) ([]*domain.MoodEntry, error) {
	query := `
		SELECT ` + moodColumns + `
		FROM mood_entries
		WHERE user_id = $1 AND date >= $2::text::date
		ORDER BY date DESC`
	return r.list(ctx, query, userID, from)
}

func (r *PostgresMoodRepository) list(ctx context.Context, query string, args ...any) ([]*domain.MoodEntry, error) {
	var rows []moodRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("repository: list moods failed: %w", err)
	}

	entries := make([]*domain.MoodEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toDomain())
	}
	return entries, nil
}
