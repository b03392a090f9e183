package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// setupTestDB connects with the given driver ("pgx" or "postgres") and skips
// when the database is down or not migrated.
func setupTestDB(t *testing.T, driver string) *sqlx.DB {
	t.Helper()
	_ = godotenv.Load("../../../.env")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("DB_USER", "kanso_user"),
		getEnv("DB_PASSWORD", "secret"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "kanso_db"),
	)

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		t.Skipf("Skipping integration tests: database connection failed: %v", err)
	}

	var table sql.NullString
	if err := db.Get(&table, "SELECT to_regclass('public.fasting_sessions')::text"); err != nil || !table.Valid {
		db.Close()
		t.Skip("Skipping integration tests: run cmd/migrate first")
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// seedUser inserts a throwaway user and removes it (and everything that
// cascades from it) when the test ends.
func seedUser(t *testing.T, db *sqlx.DB) *domain.User {
	t.Helper()

	user, err := domain.NewUser(uuid.NewString(), fmt.Sprintf("it_%s@example.com", uuid.NewString()), "Integration")
	require.NoError(t, err)
	require.NoError(t, user.SetPassword("passwordStrong123"))
	require.NoError(t, NewPostgresUserRepository(db).Create(context.Background(), user))

	t.Cleanup(func() {
		_, _ = db.Exec("DELETE FROM users WHERE id = $1", user.ID)
	})
	return user
}

func dbNow(t *testing.T, db *sqlx.DB) time.Time {
	t.Helper()
	var now time.Time
	require.NoError(t, db.Get(&now, "SELECT date_trunc('second', NOW())"))
	return now.UTC()
}
