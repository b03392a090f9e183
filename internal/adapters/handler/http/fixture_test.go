package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-fast-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/services"
	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/workers"
)

const testUserHeader = "X-Test-User"

var apiT0 = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testAPI struct {
	router   *gin.Engine
	clock    *testClock
	sessions *repository.InMemorySessionRepository
}

// newTestAPI wires every protected handler over in-memory stores. The
// caller is identified by the X-Test-User header instead of a JWT.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	RegisterValidators()

	clock := &testClock{now: apiT0}
	sessions := repository.NewInMemorySessionRepository()
	settings := &memSettings{data: map[string]*domain.Settings{}}
	water := &memWater{data: map[string]*domain.WaterLog{}}
	mood := &memMood{data: map[string]*domain.MoodEntry{}}
	profiles := &memProfiles{data: map[string]*domain.UserProfile{}}
	achievements := &memAchievements{data: map[string]*domain.Achievement{}}

	sessionSvc := services.NewSessionService(sessions, clock, nil)

	router := gin.New()
	api := router.Group("")
	api.Use(func(c *gin.Context) {
		if user := c.GetHeader(testUserHeader); user != "" {
			c.Set(middleware.ContextUserIDKey, user)
		}
		c.Next()
	})

	NewSessionHandler(sessionSvc, workers.NewProgressTicker(clock, 10*time.Millisecond)).RegisterRoutes(api)
	NewStatsHandler(services.NewStatsService(sessions, settings, clock)).RegisterRoutes(api)
	NewAchievementHandler(services.NewAchievementService(sessions, water, achievements, settings, clock)).RegisterRoutes(api)
	NewWellnessHandler(
		services.NewWaterService(water, settings, clock, nil),
		services.NewMoodService(mood, settings, clock),
	).RegisterRoutes(api)
	NewProfileHandler(services.NewProfileService(profiles), services.NewSettingsService(settings)).RegisterRoutes(api)
	NewMeditationHandler(services.NewMeditationService(newMemDevice(), settings, clock)).RegisterRoutes(api)

	return &testAPI{router: router, clock: clock, sessions: sessions}
}

func (a *testAPI) do(t *testing.T, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set(testUserHeader, user)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

// seedSession stores a fast that started ago before the test clock.
func (a *testAPI) seedSession(t *testing.T, user string, ago time.Duration, hours float64) *domain.FastingSession {
	t.Helper()
	s, err := domain.NewFastingSession(user, domain.FastingTypeIntermittent, "", hours, a.clock.Now().Add(-ago), "")
	if err != nil {
		t.Fatal(err)
	}
	if err := a.sessions.Create(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	return s
}

type memSettings struct {
	mu   sync.Mutex
	data map[string]*domain.Settings
}

func (m *memSettings) Get(ctx context.Context, userID string) (*domain.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.data[userID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memSettings) Save(ctx context.Context, s *domain.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.data[s.UserID] = &cp
	return nil
}

type memWater struct {
	mu   sync.Mutex
	data map[string]*domain.WaterLog
}

func (m *memWater) GetByDate(ctx context.Context, userID, date string) (*domain.WaterLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.data[userID+"|"+date]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, nil
}

func (m *memWater) Upsert(ctx context.Context, l *domain.WaterLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	m.data[l.UserID+"|"+l.Date] = &cp
	return nil
}

func (m *memWater) ListSince(ctx context.Context, userID, from string) ([]*domain.WaterLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.WaterLog
	for _, l := range m.data {
		if l.UserID == userID && l.Date >= from {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (m *memWater) MaxDailyCups(ctx context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	best := 0
	for _, l := range m.data {
		if l.UserID == userID && l.Cups > best {
			best = l.Cups
		}
	}
	return best, nil
}

type memMood struct {
	mu   sync.Mutex
	data map[string]*domain.MoodEntry
}

func (m *memMood) Upsert(ctx context.Context, e *domain.MoodEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.data[e.UserID+"|"+e.Date] = &cp
	return nil
}

func (m *memMood) GetByDate(ctx context.Context, userID, date string) (*domain.MoodEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.data[userID+"|"+date]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrMoodEntryNotFound
}

func (m *memMood) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.MoodEntry, error) {
	out, _ := m.ListSince(ctx, userID, "")
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memMood) ListSince(ctx context.Context, userID, from string) ([]*domain.MoodEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.MoodEntry{}
	for _, e := range m.data {
		if e.UserID == userID && e.Date >= from {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

type memProfiles struct {
	mu   sync.Mutex
	data map[string]*domain.UserProfile
}

func (m *memProfiles) GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.data[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrProfileNotFound
}

func (m *memProfiles) Upsert(ctx context.Context, p *domain.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.data[p.UserID] = &cp
	return nil
}

type memAchievements struct {
	mu   sync.Mutex
	data map[string]*domain.Achievement
}

func (m *memAchievements) ListByUser(ctx context.Context, userID string) ([]*domain.Achievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Achievement{}
	for _, a := range m.data {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memAchievements) Upsert(ctx context.Context, a *domain.Achievement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	m.data[a.UserID+"|"+a.BadgeID] = &cp
	return nil
}

type memDevice struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemDevice() *memDevice {
	return &memDevice{data: map[string][]byte{}}
}

func (m *memDevice) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return json.Unmarshal(raw, dest) == nil, nil
}

func (m *memDevice) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}
