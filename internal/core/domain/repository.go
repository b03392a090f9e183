package domain

import (
	"context"
	"time"
)

type SessionRepository interface {
	// Create persists a new fasting session.
	// Implementations must return ErrActiveSessionExists when the session is
	// active and the user already has another active session.
	Create(ctx context.Context, session *FastingSession) error

	// GetByID retrieves a session by its unique identifier.
	GetByID(ctx context.Context, id string) (*FastingSession, error)

	// ListByUser returns the user's sessions, most recent start first.
	// A limit <= 0 means no limit.
	ListByUser(ctx context.Context, userID string, limit int) ([]*FastingSession, error)

	// GetActive returns the user's running session or ErrSessionNotFound.
	GetActive(ctx context.Context, userID string) (*FastingSession, error)

	Update(ctx context.Context, session *FastingSession) error

	// Delete removes a session. It requires userID to ensure the user owns it.
	Delete(ctx context.Context, id string, userID string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

type ProfileRepository interface {
	// GetByUserID returns ErrProfileNotFound when the user never saved a profile.
	GetByUserID(ctx context.Context, userID string) (*UserProfile, error)

	// Upsert creates or replaces the user's single profile row.
	Upsert(ctx context.Context, profile *UserProfile) error
}

type WaterRepository interface {
	// GetByDate returns nil and no error when nothing was logged that day.
	GetByDate(ctx context.Context, userID string, date string) (*WaterLog, error)

	// Upsert stores the day's total, one row per user per day.
	Upsert(ctx context.Context, log *WaterLog) error

	// ListSince returns logs on or after the given day, newest first.
	ListSince(ctx context.Context, userID string, from string) ([]*WaterLog, error)

	// MaxDailyCups returns the best single day ever logged.
	MaxDailyCups(ctx context.Context, userID string) (int, error)
}

type MoodRepository interface {
	// Upsert overwrites the entry for (user, date).
	Upsert(ctx context.Context, entry *MoodEntry) error

	// GetByDate returns ErrMoodEntryNotFound when the day has no entry.
	GetByDate(ctx context.Context, userID string, date string) (*MoodEntry, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*MoodEntry, error)
	ListSince(ctx context.Context, userID string, from string) ([]*MoodEntry, error)
}

type AchievementRepository interface {
	ListByUser(ctx context.Context, userID string) ([]*Achievement, error)

	// Upsert writes the state of one (user, badge) pair. An unlocked row never
	// goes back to locked.
	Upsert(ctx context.Context, achievement *Achievement) error
}

type SettingsRepository interface {
	// Get returns nil and no error when the user has no stored settings.
	Get(ctx context.Context, userID string) (*Settings, error)
	Save(ctx context.Context, settings *Settings) error
}

// DeviceStore is a small per-user JSON key/value store.
// GetJSON reports false when the key is absent or its value cannot be decoded.
type DeviceStore interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}
