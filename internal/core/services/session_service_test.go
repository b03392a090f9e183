package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/services"
)

var sessionT0 = time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)

func activeSession(t *testing.T, userID string, start time.Time, hours float64) *domain.FastingSession {
	t.Helper()
	s, err := domain.NewFastingSession(userID, domain.FastingTypeIntermittent, "", hours, start, "")
	require.NoError(t, err)
	return s
}

func TestSessionService_Start(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: starts now when no start time is given", func(t *testing.T) {
		repo := new(MockSessionRepo)
		clock := &fixedClock{now: sessionT0}
		svc := services.NewSessionService(repo, clock, nil)

		repo.On("GetActive", ctx, "u1").Return(nil, domain.ErrSessionNotFound)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.FastingSession")).Return(nil)

		s, err := svc.Start(ctx, services.StartSessionInput{UserID: "u1", DurationHours: 16})

		require.NoError(t, err)
		assert.Equal(t, sessionT0, s.StartTime)
		assert.Equal(t, domain.FastingTypeIntermittent, s.Type)
		assert.Equal(t, domain.StatusActive, s.Status)
		repo.AssertExpectations(t)
	})

	t.Run("Fail: rejects a second active session", func(t *testing.T) {
		repo := new(MockSessionRepo)
		svc := services.NewSessionService(repo, &fixedClock{now: sessionT0}, nil)

		existing := activeSession(t, "u1", sessionT0.Add(-2*time.Hour), 16)
		repo.On("GetActive", ctx, "u1").Return(existing, nil)

		_, err := svc.Start(ctx, services.StartSessionInput{UserID: "u1", DurationHours: 16})

		assert.ErrorIs(t, err, domain.ErrActiveSessionExists)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Success: supersede stops the running session first", func(t *testing.T) {
		repo := new(MockSessionRepo)
		queue := &recordingQueue{}
		svc := services.NewSessionService(repo, &fixedClock{now: sessionT0}, queue)

		existing := activeSession(t, "u1", sessionT0.Add(-2*time.Hour), 16)
		repo.On("GetActive", ctx, "u1").Return(existing, nil)
		repo.On("Update", ctx, existing).Return(nil)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.FastingSession")).Return(nil)

		s, err := svc.Start(ctx, services.StartSessionInput{UserID: "u1", DurationHours: 18, Supersede: true})

		require.NoError(t, err)
		assert.NotEqual(t, existing.ID, s.ID)
		assert.Equal(t, domain.StatusStopped, existing.Status)
		require.NotNil(t, existing.ActualEndTime)
		assert.Equal(t, sessionT0, *existing.ActualEndTime)
		assert.Equal(t, []string{"u1"}, queue.Users())
		repo.AssertExpectations(t)
	})

	t.Run("Fail: start time in the future", func(t *testing.T) {
		repo := new(MockSessionRepo)
		svc := services.NewSessionService(repo, &fixedClock{now: sessionT0}, nil)

		future := sessionT0.Add(time.Hour)
		_, err := svc.Start(ctx, services.StartSessionInput{UserID: "u1", DurationHours: 16, StartTime: &future})

		assert.ErrorIs(t, err, domain.ErrStartTimeInFuture)
		repo.AssertNotCalled(t, "GetActive", mock.Anything, mock.Anything)
	})

	t.Run("Fail: validation happens before the active check", func(t *testing.T) {
		repo := new(MockSessionRepo)
		svc := services.NewSessionService(repo, &fixedClock{now: sessionT0}, nil)

		_, err := svc.Start(ctx, services.StartSessionInput{UserID: "u1", DurationHours: 0})

		assert.ErrorIs(t, err, domain.ErrInvalidDuration)
		repo.AssertNotCalled(t, "GetActive", mock.Anything, mock.Anything)
	})

	t.Run("Fail: store level conflict is surfaced", func(t *testing.T) {
		repo := new(MockSessionRepo)
		svc := services.NewSessionService(repo, &fixedClock{now: sessionT0}, nil)

		repo.On("GetActive", ctx, "u1").Return(nil, domain.ErrSessionNotFound)
		repo.On("Create", ctx, mock.Anything).Return(domain.ErrActiveSessionExists)

		_, err := svc.Start(ctx, services.StartSessionInput{UserID: "u1", DurationHours: 16})

		assert.ErrorIs(t, err, domain.ErrActiveSessionExists)
	})
}

func TestSessionService_Stop(t *testing.T) {
	ctx := context.Background()

	t.Run("Completed after the planned duration", func(t *testing.T) {
		repo := new(MockSessionRepo)
		clock := &fixedClock{now: sessionT0.Add(17 * time.Hour)}
		queue := &recordingQueue{}
		svc := services.NewSessionService(repo, clock, queue)

		s := activeSession(t, "u1", sessionT0, 16)
		repo.On("GetByID", ctx, s.ID).Return(s, nil)
		repo.On("Update", ctx, s).Return(nil)

		stopped, err := svc.Stop(ctx, s.ID, "u1")

		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, stopped.Status)
		assert.Equal(t, []string{"u1"}, queue.Users())
	})

	t.Run("Stopped early", func(t *testing.T) {
		repo := new(MockSessionRepo)
		svc := services.NewSessionService(repo, &fixedClock{now: sessionT0.Add(5 * time.Hour)}, nil)

		s := activeSession(t, "u1", sessionT0, 16)
		repo.On("GetByID", ctx, s.ID).Return(s, nil)
		repo.On("Update", ctx, s).Return(nil)

		stopped, err := svc.Stop(ctx, s.ID, "u1")

		require.NoError(t, err)
		assert.Equal(t, domain.StatusStopped, stopped.Status)
	})

	t.Run("Other users' sessions look missing", func(t *testing.T) {
		repo := new(MockSessionRepo)
		svc := services.NewSessionService(repo, &fixedClock{now: sessionT0}, nil)

		s := activeSession(t, "owner", sessionT0, 16)
		repo.On("GetByID", ctx, s.ID).Return(s, nil)

		_, err := svc.Stop(ctx, s.ID, "intruder")

		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		svc := services.NewSessionService(new(MockSessionRepo), &fixedClock{now: sessionT0}, nil)

		_, err := svc.Stop(ctx, "id", "")

		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}

func TestSessionService_PauseResume(t *testing.T) {
	ctx := context.Background()

	t.Run("Pause then resume", func(t *testing.T) {
		repo := new(MockSessionRepo)
		svc := services.NewSessionService(repo, &fixedClock{now: sessionT0.Add(time.Hour)}, nil)

		s := activeSession(t, "u1", sessionT0, 16)
		repo.On("GetByID", ctx, s.ID).Return(s, nil)
		repo.On("Update", ctx, s).Return(nil)
		repo.On("GetActive", ctx, "u1").Return(nil, domain.ErrSessionNotFound)

		paused, err := svc.Pause(ctx, s.ID, "u1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPaused, paused.Status)

		resumed, err := svc.Resume(ctx, s.ID, "u1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusActive, resumed.Status)
	})

	t.Run("Resume is refused while another fast runs", func(t *testing.T) {
		repo := new(MockSessionRepo)
		svc := services.NewSessionService(repo, &fixedClock{now: sessionT0.Add(time.Hour)}, nil)

		paused := activeSession(t, "u1", sessionT0, 16)
		require.NoError(t, paused.Pause())
		other := activeSession(t, "u1", sessionT0.Add(30*time.Minute), 16)

		repo.On("GetByID", ctx, paused.ID).Return(paused, nil)
		repo.On("GetActive", ctx, "u1").Return(other, nil)

		_, err := svc.Resume(ctx, paused.ID, "u1")

		assert.ErrorIs(t, err, domain.ErrActiveSessionExists)
		assert.Equal(t, domain.StatusPaused, paused.Status)
	})
}

func TestSessionService_Progress(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSessionRepo)
	clock := &fixedClock{now: sessionT0.Add(8 * time.Hour)}
	svc := services.NewSessionService(repo, clock, nil)

	s := activeSession(t, "u1", sessionT0, 16)
	repo.On("GetByID", ctx, s.ID).Return(s, nil)

	p, err := svc.Progress(ctx, s.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, 50.0, p.Percent)
	assert.Equal(t, "08:00:00", p.Elapsed)
	assert.Equal(t, "08:00:00", p.Remaining)

	clock.Advance(8*time.Hour + time.Minute)

	p, err = svc.Progress(ctx, s.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, p.Percent)
	assert.Equal(t, "00:00:00", p.Remaining)
}

func TestSessionService_DeleteAndNotes(t *testing.T) {
	ctx := context.Background()

	t.Run("Delete checks ownership", func(t *testing.T) {
		repo := new(MockSessionRepo)
		queue := &recordingQueue{}
		svc := services.NewSessionService(repo, &fixedClock{now: sessionT0}, queue)

		s := activeSession(t, "u1", sessionT0, 16)
		repo.On("GetByID", ctx, s.ID).Return(s, nil)
		repo.On("Delete", ctx, s.ID, "u1").Return(nil)

		require.NoError(t, svc.Delete(ctx, s.ID, "u1"))
		assert.ErrorIs(t, svc.Delete(ctx, s.ID, "u2"), domain.ErrSessionNotFound)
		assert.Equal(t, []string{"u1"}, queue.Users())
		repo.AssertNumberOfCalls(t, "Delete", 1)
	})

	t.Run("Missing session", func(t *testing.T) {
		repo := new(MockSessionRepo)
		svc := services.NewSessionService(repo, &fixedClock{now: sessionT0}, nil)

		repo.On("GetByID", ctx, "nope").Return(nil, domain.ErrSessionNotFound)

		assert.ErrorIs(t, svc.Delete(ctx, "nope", "u1"), domain.ErrSessionNotFound)
	})

	t.Run("Notes are validated", func(t *testing.T) {
		repo := new(MockSessionRepo)
		svc := services.NewSessionService(repo, &fixedClock{now: sessionT0}, nil)

		s := activeSession(t, "u1", sessionT0, 16)
		repo.On("GetByID", ctx, s.ID).Return(s, nil)
		repo.On("Update", ctx, s).Return(nil)

		updated, err := svc.UpdateNotes(ctx, services.UpdateSessionInput{ID: s.ID, UserID: "u1", Notes: " light headache "})
		require.NoError(t, err)
		assert.Equal(t, "light headache", updated.Notes)
	})

	t.Run("Repository errors propagate", func(t *testing.T) {
		repo := new(MockSessionRepo)
		svc := services.NewSessionService(repo, &fixedClock{now: sessionT0}, nil)

		dbErr := errors.New("db down")
		repo.On("ListByUser", ctx, "u1", 10).Return(nil, dbErr)

		_, err := svc.List(ctx, "u1", 10)
		assert.ErrorIs(t, err, dbErr)
	})
}
