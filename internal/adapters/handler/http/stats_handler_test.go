package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
)

func TestStatsHandler(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/stats/summary", "u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	empty := decode[domain.FastingStats](t, w)
	assert.Equal(t, 0, empty.TotalFasts)
	assert.Equal(t, 100.0, empty.SuccessRate)

	s := api.seedSession(t, "u1", 17*time.Hour, 16)
	w = api.do(t, http.MethodPost, "/sessions/"+s.ID+"/stop", "u1", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodGet, "/stats/summary", "u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[domain.FastingStats](t, w)
	assert.Equal(t, 1, stats.TotalFasts)
	assert.InDelta(t, 17.0, stats.LongestFast, 0.001)

	w = api.do(t, http.MethodGet, "/stats/recommendation", "u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	rec := decode[domain.Recommendation](t, w)
	assert.NotEmpty(t, rec.Title)
	assert.Positive(t, rec.TargetHours)

	assert.Equal(t, http.StatusUnauthorized, api.do(t, http.MethodGet, "/stats/summary", "", "").Code)
}

func TestAchievementHandler(t *testing.T) {
	api := newTestAPI(t)

	s := api.seedSession(t, "u1", 17*time.Hour, 16)
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/sessions/"+s.ID+"/stop", "u1", "").Code)

	w := api.do(t, http.MethodGet, "/achievements", "u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[domain.AchievementEvaluation](t, w)
	require.Len(t, listed.NewlyUnlocked, 1)
	assert.Equal(t, "first_fast", listed.NewlyUnlocked[0].ID)
	assert.Len(t, listed.Badges, len(domain.BadgeCatalog))

	w = api.do(t, http.MethodPost, "/achievements/sync", "u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[domain.AchievementEvaluation](t, w).NewlyUnlocked, 1)

	w = api.do(t, http.MethodPost, "/achievements/sync", "u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	synced := decode[domain.AchievementEvaluation](t, w)
	assert.Empty(t, synced.NewlyUnlocked)
	assert.Contains(t, synced.Unlocked, "first_fast")
}
