package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/lexigo/reviewd/internal/api"
	"github.com/lexigo/reviewd/internal/auth"
	"github.com/lexigo/reviewd/internal/evaluator"
	"github.com/lexigo/reviewd/internal/exercise"
	"github.com/lexigo/reviewd/internal/jobs"
	"github.com/lexigo/reviewd/internal/lock"
	"github.com/lexigo/reviewd/internal/models"
	"github.com/lexigo/reviewd/internal/repository/sqlite"
	"github.com/lexigo/reviewd/internal/services"
	"github.com/lexigo/reviewd/internal/testutil"
	"github.com/lexigo/reviewd/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const secret = "test-secret-0123456789"

type APISuite struct {
	suite.Suite
	handler http.Handler
	server  *api.Server
	pool    *worker.Pool
	cancel  context.CancelFunc
}

func (s *APISuite) SetupTest() {
	conn := testutil.NewTestDB(s.T())
	store := sqlite.NewStore(conn.DB)
	locker := lock.NewLocal()
	opts := []services.Option{services.WithLocation(time.UTC)}

	vocab := services.NewVocabularyService(store, opts...)
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.pool = worker.NewPool("import", 1, 4)
	s.pool.Start(ctx)

	s.server = &api.Server{
		Exercises:   services.NewExerciseService(store, exercise.NewGenerator(7), exercise.NewGrader(evaluator.NewHeuristic(), time.Second), locker, time.Hour, opts...),
		CheckIns:    services.NewCheckInService(store, locker, opts...),
		Dashboard:   services.NewDashboardService(store, opts...),
		Vocabulary:  vocab,
		Imports:     services.NewImportService(jobs.NewWorkerQueue(s.pool, vocab)),
		Users:       services.NewUserService(store, opts...),
		ReadyChecks: map[string]api.HealthCheck{"database": store.Ping},
		JWTSecret:   secret,
	}
	s.handler = s.server.Routes()
}

func (s *APISuite) TearDownTest() {
	s.pool.Stop()
	s.cancel()
}

func (s *APISuite) token(userID int64) string {
	tok, err := auth.GenerateToken(userID, secret, time.Hour)
	s.Require().NoError(err)
	return tok
}

func (s *APISuite) do(method, path string, userID int64, body any) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if userID != 0 {
		req.Header.Set("Authorization", "Bearer "+s.token(userID))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *APISuite) decode(rec *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (s *APISuite) assertError(rec *httptest.ResponseRecorder, status int, code string) {
	s.Equal(status, rec.Code, rec.Body.String())
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	s.decode(rec, &body)
	s.Equal(code, body.Error.Code)
	s.NotEmpty(body.Error.Message)
}

func (s *APISuite) TestHealth() {
	rec := s.do(http.MethodGet, "/healthz", 0, nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("nosniff", rec.Header().Get("X-Content-Type-Options"))
	s.NotEmpty(rec.Header().Get("X-Request-ID"))

	rec = s.do(http.MethodGet, "/readyz", 0, nil)
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"ready","checks":{"database":"ok"}}`, rec.Body.String())
}

func (s *APISuite) TestReadyReportsFailingDependency() {
	s.server.ReadyChecks["lock"] = func(context.Context) error { return fmt.Errorf("connection refused") }
	s.handler = s.server.Routes()

	rec := s.do(http.MethodGet, "/readyz", 0, nil)

	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.JSONEq(`{"status":"unavailable","checks":{"database":"ok","lock":"unavailable"}}`, rec.Body.String())
}

func (s *APISuite) TestMetrics() {
	s.do(http.MethodGet, "/healthz", 0, nil)
	rec := s.do(http.MethodGet, "/metrics", 0, nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "http_requests_total")
}

func (s *APISuite) TestAuthentication() {
	rec := s.do(http.MethodGet, "/dashboard/summary", 0, nil)
	s.assertError(rec, http.StatusUnauthorized, "UNAUTHORIZED")

	req := httptest.NewRequest(http.MethodGet, "/dashboard/summary", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	s.assertError(rec, http.StatusUnauthorized, "UNAUTHORIZED")
}

func (s *APISuite) TestUnknownRoute() {
	rec := s.do(http.MethodGet, "/nope", 1, nil)
	s.assertError(rec, http.StatusNotFound, "NOT_FOUND")
}

func (s *APISuite) TestVocabularyLifecycle() {
	rec := s.do(http.MethodPost, "/vocabulary", 1, map[string]any{
		"word":        "resilient",
		"translation": "kiên cường",
		"examples":    []string{"She is resilient."},
		"difficulty":  models.DifficultyHard,
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var created models.VocabularyItem
	s.decode(rec, &created)
	s.Equal("resilient", created.Word)

	rec = s.do(http.MethodPost, "/vocabulary", 1, map[string]any{"word": "Resilient", "translation": "x"})
	s.assertError(rec, http.StatusConflict, "CONFLICT")

	rec = s.do(http.MethodPost, "/vocabulary", 1, map[string]any{"word": "", "translation": "x"})
	s.assertError(rec, http.StatusBadRequest, "VALIDATION_ERROR")

	path := fmt.Sprintf("/vocabulary/%d", created.ID)
	rec = s.do(http.MethodGet, path, 2, nil)
	s.assertError(rec, http.StatusNotFound, "NOT_FOUND")

	rec = s.do(http.MethodPut, path, 1, map[string]any{"word": "resilient", "translation": "bền bỉ"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/vocabulary?limit=10&q="+url.QueryEscape("bền"), 1, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var page models.VocabularyPage
	s.decode(rec, &page)
	s.Equal(1, page.Total)
	s.Equal("bền bỉ", page.Items[0].Translation)

	rec = s.do(http.MethodPost, fmt.Sprintf("/vocabulary/review/%d", created.ID), 1, map[string]any{"quality": 4})
	s.assertError(rec, http.StatusBadRequest, "VALIDATION_ERROR")
	rec = s.do(http.MethodPost, fmt.Sprintf("/vocabulary/review/%d", created.ID), 1, map[string]any{"quality": 5})
	s.Require().Equal(http.StatusOK, rec.Code)
	var reviewed models.VocabularyItem
	s.decode(rec, &reviewed)
	s.Equal(1, reviewed.Repetitions)

	rec = s.do(http.MethodDelete, path, 1, nil)
	s.Equal(http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodGet, path, 1, nil)
	s.assertError(rec, http.StatusNotFound, "NOT_FOUND")

	rec = s.do(http.MethodGet, "/vocabulary/abc", 1, nil)
	s.assertError(rec, http.StatusBadRequest, "BAD_REQUEST")
}

func (s *APISuite) TestExerciseFlow() {
	for _, w := range [][2]string{{"apple", "quả táo"}, {"cat", "con mèo"}} {
		rec := s.do(http.MethodPost, "/vocabulary", 1, map[string]any{"word": w[0], "translation": w[1]})
		s.Require().Equal(http.StatusCreated, rec.Code)
	}

	rec := s.do(http.MethodGet, "/exercises/generate?limit=5", 1, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var exercises []models.Exercise
	s.decode(rec, &exercises)
	s.Require().Len(exercises, 2)
	ex := exercises[0]
	s.Equal(models.ExerciseFlashcard, ex.ExerciseType)

	path := "/exercises/" + ex.ID + "/submit"
	rec = s.do(http.MethodPost, path, 1, map[string]any{})
	s.assertError(rec, http.StatusBadRequest, "VALIDATION_ERROR")

	rec = s.do(http.MethodPost, path, 1, map[string]any{"userAnswer": "5"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var result map[string]any
	s.decode(rec, &result)
	s.EqualValues(10, result["xpEarned"])
	s.Nil(result["newLevel"])
	s.Nil(result["betaRewardEarned"])
	s.Contains(result, "updatedUser")

	rec = s.do(http.MethodPost, path, 1, map[string]any{"userAnswer": "5"})
	s.assertError(rec, http.StatusConflict, "CONFLICT")

	rec = s.do(http.MethodPost, "/exercises/missing/submit", 1, map[string]any{"userAnswer": "5"})
	s.assertError(rec, http.StatusNotFound, "NOT_FOUND")

	rec = s.do(http.MethodGet, "/exercises/generate", 2, nil)
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`[]`, rec.Body.String())
}

func (s *APISuite) TestCheckIn() {
	rec := s.do(http.MethodGet, "/check-in/status", 1, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var status models.CheckInStatus
	s.decode(rec, &status)
	s.False(status.CheckedInToday)

	rec = s.do(http.MethodPost, "/check-in/daily", 1, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.JSONEq(`{"xpGained":5,"betaGained":1,"milestoneBonus":0,"newLevel":null,"user":{"level":1,"streak":1,"xp":5,"betaRewards":1}}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/check-in/daily", 1, nil)
	s.assertError(rec, http.StatusConflict, "CONFLICT")

	rec = s.do(http.MethodGet, "/check-in/status", 1, nil)
	s.decode(rec, &status)
	s.True(status.CheckedInToday)
	s.Equal(1, status.Streak)
}

func (s *APISuite) TestDashboardAndProfile() {
	rec := s.do(http.MethodGet, "/dashboard/summary", 1, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var summary map[string]any
	s.decode(rec, &summary)
	for _, key := range []string{"totalWords", "wordsToday", "wordsForReview", "difficultyCounts", "sevenDayData",
		"recentActivities", "learningStreak", "betaRewards", "xp", "level", "xpForNextLevel"} {
		s.Contains(summary, key)
	}
	s.Len(summary["sevenDayData"], 7)

	rec = s.do(http.MethodGet, "/users/profile", 1, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var profile models.UserProfile
	s.decode(rec, &profile)
	s.Equal(1, profile.Level)
	s.Require().NotNil(profile.NextLevelXP)
	s.Equal(100, *profile.NextLevelXP)
}

func (s *APISuite) upload(name, content string, userID int64) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	s.Require().NoError(err)
	_, err = part.Write([]byte(content))
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/vocabulary/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token(userID))
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *APISuite) TestImport() {
	rec := s.upload("words.csv", "word,translation\napple,quả táo\ncat,con mèo\n,missing\n", 1)
	s.Require().Equal(http.StatusAccepted, rec.Code, rec.Body.String())
	var job models.ImportJob
	s.decode(rec, &job)
	s.NotEmpty(job.ID)
	s.Equal("/vocabulary/import/"+job.ID, rec.Header().Get("Location"))

	s.Require().Eventually(func() bool {
		rec := s.do(http.MethodGet, "/vocabulary/import/"+job.ID, 1, nil)
		if rec.Code != http.StatusOK {
			return false
		}
		s.decode(rec, &job)
		return job.Status == models.ImportDone
	}, 2*time.Second, 10*time.Millisecond)
	s.Require().NotNil(job.Summary)
	s.Equal(2, job.Summary.Created)

	rec = s.do(http.MethodGet, "/vocabulary/import/"+job.ID, 2, nil)
	s.assertError(rec, http.StatusNotFound, "NOT_FOUND")

	rec = s.upload("words.txt", "apple", 1)
	s.assertError(rec, http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func TestRecoveryWritesEnvelope(t *testing.T) {
	s := &api.Server{JWTSecret: secret}
	tok, err := auth.GenerateToken(1, secret, time.Hour)
	require.NoError(t, err)

	// A nil service panics inside the handler.
	req := httptest.NewRequest(http.MethodGet, "/dashboard/summary", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"INTERNAL_ERROR"`)
}
