package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skillquest/internal/engine"
	"github.com/abhisek/skillquest/internal/expectation"
	"github.com/abhisek/skillquest/internal/goals"
	"github.com/abhisek/skillquest/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newServer(t *testing.T) *gin.Engine {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	exp, err := expectation.Default()
	require.NoError(t, err)
	gt, err := goals.Default()
	require.NoError(t, err)

	eng, err := engine.New(engine.DefaultConfig(), engine.Deps{
		Plans: st, Scores: st, Outcomes: st, Focus: st, Careers: st, Readiness: st,
		Expectations: exp, Goals: gt,
		Clock: func() time.Time { return time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return NewRouter(NewHandler(eng, nil))
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

const reflectionAttempt = `{
	"grade": 7,
	"quest": {
		"id": "story-1",
		"type": "reflection",
		"title": "Story Spark",
		"content": {"prompt": "Write the opening line of a story."},
		"primarySkills": ["LANGUAGE", "CREATIVITY"],
		"grades": [6, 7, 8]
	},
	"answers": ["The door creaked open."],
	"timeSpentSeconds": 10
}`

func TestHealthz(t *testing.T) {
	w := do(t, newServer(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestDailyQuestsIsIdempotent(t *testing.T) {
	r := newServer(t)
	path := "/v1/tenants/acme/students/s1/quests?grade=7&date=2026-03-04"

	first := do(t, r, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	a := decode[store.PlanRecord](t, first)
	assert.Len(t, a.Quests, 3)
	assert.Equal(t, "2026-03-04", a.Key.Date)

	b := decode[store.PlanRecord](t, do(t, r, http.MethodGet, path, ""))
	assert.Equal(t, a.ID, b.ID)
}

func TestDailyQuestsBadInput(t *testing.T) {
	r := newServer(t)
	tests := []struct {
		query string
		code  string
	}{
		{"grade=12", "invalid_grade"},
		{"date=04-03-2026", "invalid_date"},
		{"count=0", "invalid_count"},
	}
	for _, tt := range tests {
		w := do(t, r, http.MethodGet, "/v1/tenants/acme/students/s1/quests?"+tt.query, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, tt.query)
		assert.Equal(t, tt.code, decode[ErrorEnvelope](t, w).Error.Code)
	}
}

func TestWeeklyPlan(t *testing.T) {
	r := newServer(t)
	w := do(t, r, http.MethodPost, "/v1/tenants/acme/students/s1/week",
		`{"grade": 8, "weekStart": "2026-03-02", "goal": "doctor", "weeklyMinutes": 70}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	rec := decode[store.PlanRecord](t, w)
	require.NotNil(t, rec.Weekly)
	assert.Equal(t, "Doctor", rec.Weekly.Goal)
	assert.Len(t, rec.Weekly.Days, 7)
	assert.Equal(t, 2, rec.Weekly.PerDay)
}

func TestWeeklyPlanRejectsBadGrade(t *testing.T) {
	w := do(t, newServer(t), http.MethodPost, "/v1/tenants/acme/students/s1/week", `{"grade": 3}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", decode[ErrorEnvelope](t, w).Error.Code)
}

func TestScore(t *testing.T) {
	w := do(t, newServer(t), http.MethodPost, "/v1/score", reflectionAttempt)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[ScoreResponse](t, w)
	assert.Equal(t, 100, resp.Result.Accuracy)
	assert.Equal(t, 96, resp.Result.NormalizedScore)
	require.Len(t, resp.Unlocks, 1)
	assert.Equal(t, "journalist", resp.Unlocks[0].Career)
}

func TestScoreRejectsUnknownQuestType(t *testing.T) {
	w := do(t, newServer(t), http.MethodPost, "/v1/score", `{"quest": {"id": "x", "type": "essay", "content": {}}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScoreRejectsOversizedMiniGame(t *testing.T) {
	body := `{"quest": {"id": "g", "type": "mini_game", "content": {"game": "logic", "seed": "s", "questionCount": 2000000}}, "answers": []}`
	w := do(t, newServer(t), http.MethodPost, "/v1/score", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", decode[ErrorEnvelope](t, w).Error.Code)
}

func TestRecordThenCareersAndInsights(t *testing.T) {
	r := newServer(t)

	w := do(t, r, http.MethodPost, "/v1/tenants/acme/students/s1/attempts", reflectionAttempt)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rec := decode[engine.Recorded](t, w)
	require.Len(t, rec.Unlocks, 1)

	w = do(t, r, http.MethodGet, "/v1/tenants/acme/students/s1/careers", "")
	require.Equal(t, http.StatusOK, w.Code)
	var careers struct {
		Unlocks []store.UnlockRecord `json:"unlocks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &careers))
	require.Len(t, careers.Unlocks, 1)
	assert.Equal(t, "journalist", careers.Unlocks[0].Career)

	w = do(t, r, http.MethodGet, "/v1/tenants/acme/students/s1/insights?grade=7", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	in := decode[engine.Insights](t, w)
	assert.Equal(t, 1, in.Assessment.Coverage.Total)
	assert.False(t, in.Assessment.Gate.GlobalMet)
	assert.Len(t, in.Skills, 2)
}

func TestReport(t *testing.T) {
	r := newServer(t)
	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/v1/tenants/acme/students/s1/attempts", reflectionAttempt).Code)

	w := do(t, r, http.MethodGet, "/v1/tenants/acme/students/s1/report.xlsx", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")

	w = do(t, r, http.MethodGet, "/v1/tenants/acme/students/s1/report.xlsx?week=2026-03-02", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportWithoutData(t *testing.T) {
	w := do(t, newServer(t), http.MethodGet, "/v1/tenants/acme/students/nobody/report.xlsx", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "no_data", decode[ErrorEnvelope](t, w).Error.Code)
}

func TestFocusProfile(t *testing.T) {
	r := newServer(t)

	w := do(t, r, http.MethodPut, "/v1/tenants/acme/teachers/t1/focus",
		`{"active": true, "boosts": {"VALUES": 0.5}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "boost above the cap")

	w = do(t, r, http.MethodGet, "/v1/tenants/acme/teachers/t1/focus", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPut, "/v1/tenants/acme/teachers/t1/focus",
		`{"active": true, "boosts": {"VALUES": 0.15}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/v1/tenants/acme/teachers/t1/focus?grade=6", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"VALUES":0.15`)
}
