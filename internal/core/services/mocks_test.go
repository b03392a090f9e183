package services_test

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type recordingQueue struct {
	mu    sync.Mutex
	users []string
}

func (q *recordingQueue) Enqueue(userID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.users = append(q.users, userID)
}

func (q *recordingQueue) Users() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.users...)
}

type MockSessionRepo struct {
	mock.Mock
}

func (m *MockSessionRepo) Create(ctx context.Context, s *domain.FastingSession) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSessionRepo) GetByID(ctx context.Context, id string) (*domain.FastingSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FastingSession), args.Error(1)
}

func (m *MockSessionRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.FastingSession, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FastingSession), args.Error(1)
}

func (m *MockSessionRepo) GetActive(ctx context.Context, userID string) (*domain.FastingSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FastingSession), args.Error(1)
}

func (m *MockSessionRepo) Update(ctx context.Context, s *domain.FastingSession) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSessionRepo) Delete(ctx context.Context, id string, userID string) error {
	return m.Called(ctx, id, userID).Error(0)
}

type MockSettingsRepo struct {
	mock.Mock
}

func (m *MockSettingsRepo) Get(ctx context.Context, userID string) (*domain.Settings, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Settings), args.Error(1)
}

func (m *MockSettingsRepo) Save(ctx context.Context, s *domain.Settings) error {
	return m.Called(ctx, s).Error(0)
}

type MockWaterRepo struct {
	mock.Mock
}

func (m *MockWaterRepo) GetByDate(ctx context.Context, userID string, date string) (*domain.WaterLog, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WaterLog), args.Error(1)
}

func (m *MockWaterRepo) Upsert(ctx context.Context, log *domain.WaterLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *MockWaterRepo) ListSince(ctx context.Context, userID string, from string) ([]*domain.WaterLog, error) {
	args := m.Called(ctx, userID, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.WaterLog), args.Error(1)
}

func (m *MockWaterRepo) MaxDailyCups(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type MockAchievementRepo struct {
	mock.Mock
}

func (m *MockAchievementRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Achievement, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Achievement), args.Error(1)
}

func (m *MockAchievementRepo) Upsert(ctx context.Context, a *domain.Achievement) error {
	return m.Called(ctx, a).Error(0)
}

type MockMoodRepo struct {
	mock.Mock
}

func (m *MockMoodRepo) Upsert(ctx context.Context, e *domain.MoodEntry) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockMoodRepo) GetByDate(ctx context.Context, userID string, date string) (*domain.MoodEntry, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MoodEntry), args.Error(1)
}

func (m *MockMoodRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.MoodEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MoodEntry), args.Error(1)
}

func (m *MockMoodRepo) ListSince(ctx context.Context, userID string, from string) ([]*domain.MoodEntry, error) {
	args := m.Called(ctx, userID, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MoodEntry), args.Error(1)
}

type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserProfile), args.Error(1)
}

func (m *MockProfileRepo) Upsert(ctx context.Context, p *domain.UserProfile) error {
	return m.Called(ctx, p).Error(0)
}

// memoryDeviceStore keeps raw JSON so tests can plant corrupt values.
type memoryDeviceStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryDeviceStore() *memoryDeviceStore {
	return &memoryDeviceStore{data: map[string][]byte{}}
}

func (s *memoryDeviceStore) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		delete(s.data, key)
		return false, nil
	}
	return true, nil
}

func (s *memoryDeviceStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = raw
	return nil
}
