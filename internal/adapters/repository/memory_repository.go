package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
)

var _ domain.SessionRepository = (*InMemorySessionRepository)(nil)

// InMemorySessionRepository enforces the same one-active-session rule as
// the partial unique index in Postgres. Stored values are copies.
type InMemorySessionRepository struct {
	store map[string]domain.FastingSession

	mu sync.RWMutex
}

func NewInMemorySessionRepository() *InMemorySessionRepository {
	return &InMemorySessionRepository{
		store: make(map[string]domain.FastingSession),
	}
}

func (r *InMemorySessionRepository) Create(ctx context.Context, s *domain.FastingSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.IsActive() && r.hasOtherActive(s.UserID, s.ID) {
		return domain.ErrActiveSessionExists
	}
	r.store[s.ID] = *s
	return nil
}

func (r *InMemorySessionRepository) GetByID(ctx context.Context, id string) (*domain.FastingSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.store[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (r *InMemorySessionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.FastingSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := []*domain.FastingSession{}
	for _, s := range r.store {
		if s.UserID == userID {
			s := s
			sessions = append(sessions, &s)
		}
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartTime.After(sessions[j].StartTime)
	})

	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

func (r *InMemorySessionRepository) GetActive(ctx context.Context, userID string) (*domain.FastingSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.store {
		if s.UserID == userID && s.IsActive() {
			return &s, nil
		}
	}
	return nil, domain.ErrSessionNotFound
}

func (r *InMemorySessionRepository) Update(ctx context.Context, s *domain.FastingSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.store[s.ID]
	if !ok || existing.UserID != s.UserID {
		return domain.ErrSessionNotFound
	}
	if s.IsActive() && r.hasOtherActive(s.UserID, s.ID) {
		return domain.ErrActiveSessionExists
	}
	r.store[s.ID] = *s
	return nil
}

func (r *InMemorySessionRepository) Delete(ctx context.Context, id string, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.store[id]
	if !ok || s.UserID != userID {
		return domain.ErrSessionNotFound
	}

	delete(r.store, id)
	return nil
}

func (r *InMemorySessionRepository) hasOtherActive(userID, id string) bool {
	for _, s := range r.store {
		if s.UserID == userID && s.ID != id && s.IsActive() {
			return true
		}
	}
	return false
}
