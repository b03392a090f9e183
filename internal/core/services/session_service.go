package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
)

// AchievementQueue receives users whose history changed and whose badges must be re-evaluated.
type AchievementQueue interface {
	Enqueue(userID string)
}

type SessionService struct {
	repo  domain.SessionRepository
	clock domain.Clock
	queue AchievementQueue
}

func NewSessionService(repo domain.SessionRepository, clock domain.Clock, queue AchievementQueue) *SessionService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &SessionService{
		repo:  repo,
		clock: clock,
		queue: queue,
	}
}

type StartSessionInput struct {
	UserID        string
	Type          string
	Protocol      string
	DurationHours float64
	StartTime     *time.Time
	Notes         string
	Supersede     bool
}

type UpdateSessionInput struct {
	ID     string
	UserID string
	Notes  string
}

func (s *SessionService) Start(ctx context.Context, input StartSessionInput) (*domain.FastingSession, error) {
	now := s.clock.Now()

	start := now
	if input.StartTime != nil {
		start = *input.StartTime
		if start.After(now) {
			return nil, domain.ErrStartTimeInFuture
		}
	}

	if input.Type == "" {
		input.Type = domain.FastingTypeIntermittent
	}

	session, err := domain.NewFastingSession(input.UserID, input.Type, input.Protocol, input.DurationHours, start, input.Notes)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.GetActive(ctx, input.UserID)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
	case err != nil:
		return nil, err
	case !input.Supersede:
		return nil, domain.ErrActiveSessionExists
	default:
		if err := s.end(ctx, current, now); err != nil {
			return nil, fmt.Errorf("session service: failed to supersede %s: %w", current.ID, err)
		}
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

func (s *SessionService) Stop(ctx context.Context, id string, userID string) (*domain.FastingSession, error) {
	session, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if err := s.end(ctx, session, s.clock.Now()); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) Pause(ctx context.Context, id string, userID string) (*domain.FastingSession, error) {
	session, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if err := session.Pause(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Resume re-activates a paused session, unless another fast was started meanwhile.
func (s *SessionService) Resume(ctx context.Context, id string, userID string) (*domain.FastingSession, error) {
	session, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	active, err := s.repo.GetActive(ctx, userID)
	if err == nil && active.ID != session.ID {
		return nil, domain.ErrActiveSessionExists
	}
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, err
	}

	if err := session.Resume(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) UpdateNotes(ctx context.Context, input UpdateSessionInput) (*domain.FastingSession, error) {
	session, err := s.getOwned(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if err := session.UpdateNotes(input.Notes); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) Delete(ctx context.Context, id string, userID string) error {
	if _, err := s.getOwned(ctx, id, userID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.notify(userID)
	return nil
}

func (s *SessionService) Get(ctx context.Context, id string, userID string) (*domain.FastingSession, error) {
	return s.getOwned(ctx, id, userID)
}

func (s *SessionService) List(ctx context.Context, userID string, limit int) ([]*domain.FastingSession, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.repo.ListByUser(ctx, userID, limit)
}

func (s *SessionService) Active(ctx context.Context, userID string) (*domain.FastingSession, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.repo.GetActive(ctx, userID)
}

func (s *SessionService) Progress(ctx context.Context, id string, userID string) (domain.Progress, error) {
	session, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return domain.Progress{}, err
	}
	return domain.ComputeProgress(s.clock.Now(), session), nil
}

// Clock exposes the time source so streaming progress agrees with Progress.
func (s *SessionService) Clock() domain.Clock {
	return s.clock
}

func (s *SessionService) end(ctx context.Context, session *domain.FastingSession, at time.Time) error {
	if err := session.End(at); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, session); err != nil {
		return err
	}
	s.notify(session.UserID)
	return nil
}

func (s *SessionService) notify(userID string) {
	if s.queue != nil {
		s.queue.Enqueue(userID)
	}
}

// getOwned hides sessions of other users behind ErrSessionNotFound.
func (s *SessionService) getOwned(ctx context.Context, id string, userID string) (*domain.FastingSession, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}

	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}
