package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/services"
	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/workers"
)

type routerFixture struct {
	handler  http.Handler
	token    string
	sessions *repository.InMemorySessionRepository
	clock    *testClock
}

func newRouterFixture(t *testing.T, origins []string, docs bool) *routerFixture {
	t.Helper()

	users := new(MockUserRepository)
	users.On("GetByID", mock.Anything, "u1").Return(&domain.User{ID: "u1", Email: "u1@kanso.app"}, nil)
	tokens := services.NewTokenService("router-secret", "kanso-test", time.Hour, users)
	token, err := tokens.GenerateToken("u1")
	require.NoError(t, err)

	clock := &testClock{now: time.Now().UTC()}
	sessions := repository.NewInMemorySessionRepository()
	settings := &memSettings{data: map[string]*domain.Settings{}}
	water := &memWater{data: map[string]*domain.WaterLog{}}
	mood := &memMood{data: map[string]*domain.MoodEntry{}}

	router := NewRouter(RouterDependencies{
		AuthHandler:        NewAuthHandler(services.NewAuthService(users), tokens),
		SessionHandler:     NewSessionHandler(services.NewSessionService(sessions, clock, nil), workers.NewProgressTicker(clock, 10*time.Millisecond)),
		StatsHandler:       NewStatsHandler(services.NewStatsService(sessions, settings, clock)),
		AchievementHandler: NewAchievementHandler(services.NewAchievementService(sessions, water, &memAchievements{data: map[string]*domain.Achievement{}}, settings, clock)),
		WellnessHandler:    NewWellnessHandler(services.NewWaterService(water, settings, clock, nil), services.NewMoodService(mood, settings, clock)),
		ProfileHandler:     NewProfileHandler(services.NewProfileService(&memProfiles{data: map[string]*domain.UserProfile{}}), services.NewSettingsService(settings)),
		MeditationHandler:  NewMeditationHandler(services.NewMeditationService(newMemDevice(), settings, clock)),
		TokenService:       tokens,
		CorsOrigins:        origins,
		EnableDocs:         docs,
		StartTime:          time.Now(),
	})

	return &routerFixture{handler: router, token: token, sessions: sessions, clock: clock}
}

func (f *routerFixture) get(path string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authed {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	f := newRouterFixture(t, nil, false)

	w := f.get("/health", false)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"unreachable"`)
	assert.Contains(t, w.Body.String(), `"redis":"disabled"`)
}

func TestRouter_Auth(t *testing.T) {
	f := newRouterFixture(t, nil, false)

	assert.Equal(t, http.StatusUnauthorized, f.get("/api/v1/sessions/active", false).Code)
	assert.Equal(t, http.StatusNoContent, f.get("/api/v1/sessions/active", true).Code)
	assert.Equal(t, http.StatusOK, f.get("/api/v1/settings", true).Code)

	t.Run("Streams accept the token as a query parameter", func(t *testing.T) {
		s, err := domain.NewFastingSession("u1", domain.FastingTypeIntermittent, "", 1, f.clock.Now().Add(-2*time.Hour), "")
		require.NoError(t, err)
		require.NoError(t, f.sessions.Create(context.Background(), s))

		w := f.get("/api/v1/sessions/active/stream?access_token="+f.token, false)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "event:goal")

		w = f.get("/api/v1/sessions/active?access_token="+f.token, false)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRouter_CORS(t *testing.T) {
	t.Run("Wildcard", func(t *testing.T) {
		f := newRouterFixture(t, []string{"*"}, false)

		req := httptest.NewRequest(http.MethodOptions, "/api/v1/sessions", nil)
		req.Header.Set("Origin", "https://app.kanso.test")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		f.handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Listed origin only", func(t *testing.T) {
		f := newRouterFixture(t, []string{"https://app.kanso.test"}, false)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://evil.test")
		w := httptest.NewRecorder()
		f.handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestRouter_Docs(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, newRouterFixture(t, nil, false).get("/swagger/doc.json", false).Code)

	w := newRouterFixture(t, nil, true).get("/swagger/doc.json", false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/sessions/active/stream")
}
