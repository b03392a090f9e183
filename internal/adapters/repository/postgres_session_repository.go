package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// activeSessionIndex is the partial unique index that keeps one active
// session per user.
const activeSessionIndex = "fasting_sessions_one_active"

const sessionColumns = `id, user_id, type, protocol, start_time, planned_end_time,
	duration_hours, status, actual_end_time, notes, created_at, updated_at`

var _ domain.SessionRepository = (*PostgresSessionRepository)(nil)

type PostgresSessionRepository struct {
	db *sqlx.DB
}

func NewPostgresSessionRepository(db *sqlx.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

func (r *PostgresSessionRepository) Create(ctx context.Context, s *domain.FastingSession) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	query := `
		INSERT INTO fasting_sessions (
			id, user_id, type, protocol, start_time, planned_end_time,
			duration_hours, status, actual_end_time, notes, created_at, updated_at
		) VALUES (
			:id, :user_id, :type, :protocol, :start_time, :planned_end_time,
			:duration_hours, :status, :actual_end_time, :notes, :created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return mapSessionWriteError("create", err)
	}
	return nil
}

func (r *PostgresSessionRepository) GetByID(ctx context.Context, id string) (*domain.FastingSession, error) {
	var s domain.FastingSession
	query := `SELECT ` + sessionColumns + ` FROM fasting_sessions WHERE id = $1`

	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("repository: get session failed: %w", err)
	}
	return &s, nil
}

func (r *PostgresSessionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.FastingSession, error) {
	sessions := []*domain.FastingSession{}

	// LIMIT NULL is LIMIT ALL in Postgres.
	var lim sql.NullInt64
	if limit > 0 {
		lim = sql.NullInt64{Int64: int64(limit), Valid: true}
	}

	query := `
		SELECT ` + sessionColumns + `
		FROM fasting_sessions
		WHERE user_id = $1
		ORDER BY start_time DESC
		LIMIT $2`

	if err := r.db.SelectContext(ctx, &sessions, query, userID, lim); err != nil {
		return nil, fmt.Errorf("repository: list sessions failed: %w", err)
	}
	return sessions, nil
}

func (r *PostgresSessionRepository) GetActive(ctx context.Context, userID string) (*domain.FastingSession, error) {
	var s domain.FastingSession
	query := `
		SELECT ` + sessionColumns + `
		FROM fasting_sessions
		WHERE user_id = $1 AND status = 'active'
		ORDER BY start_time DESC
		LIMIT 1`

	if err := r.db.GetContext(ctx, &s, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("repository: get active session failed: %w", err)
	}
	return &s, nil
}

func (r *PostgresSessionRepository) Update(ctx context.Context, s *domain.FastingSession) error {
	s.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE fasting_sessions
		SET type = :type,
		    protocol = :protocol,
		    start_time = :start_time,
		    planned_end_time = :planned_end_time,
		    duration_hours = :duration_hours,
		    status = :status,
		    actual_end_time = :actual_end_time,
		    notes = :notes,
		    updated_at = :updated_at
		WHERE id = :id AND user_id = :user_id`

	result, err := r.db.NamedExecContext(ctx, query, s)
	if err != nil {
		return mapSessionWriteError("update", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *PostgresSessionRepository) Delete(ctx context.Context, id string, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM fasting_sessions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("repository: delete session failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func mapSessionWriteError(op string, err error) error {
	switch {
	case isUniqueViolation(err, activeSessionIndex):
		return domain.ErrActiveSessionExists
	case isForeignKeyViolation(err):
		return domain.ErrUserNotFound
	default:
		return fmt.Errorf("repository: %s session failed: %w", op, err)
	}
}
