package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/config"
	"github.com/phrazzld/sprachweg/internal/domain"
	"github.com/phrazzld/sprachweg/internal/platform/logger"
	"github.com/phrazzld/sprachweg/internal/platform/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "debug"},
		Auth:   config.AuthConfig{JWTSecret: "test-secret-that-is-long-enough-for-testing"},
		Progress: config.ProgressConfig{
			PointsDivisor:    10,
			DefaultDailyGoal: 5,
			TimeZone:         "UTC",
		},
	}
}

func memoryBackend(db *memory.DB) backend {
	return backend{
		tx:           memory.NewTxManager(db),
		content:      memory.NewContentStore(db),
		progress:     memory.NewUserProgressStore(db),
		reviewStates: memory.NewCardReviewStateStore(db),
		attempts:     memory.NewQuizAttemptStore(db),
		achievements: memory.NewAchievementStore(db),
	}
}

func newTestApp(t *testing.T) (*application, *memory.DB) {
	t.Helper()

	log, _ := logger.NewTestLogger(t)
	db := memory.NewDB()
	app, err := newApplication(testConfig(), log, nil, memoryBackend(db))
	require.NoError(t, err)
	require.NoError(t, app.seedAchievements(context.Background()))
	return app, db
}

func TestParseFlags(t *testing.T) {
	t.Parallel()

	f, err := parseFlags([]string{"-migrate", "status", "-config", "dev.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "status", f.migrate)
	assert.Equal(t, "dev.yaml", f.configPath)
	assert.Equal(t, 24*time.Hour, f.tokenTTL)
	assert.False(t, f.seedAchievements)

	f, err = parseFlags([]string{"-seed-achievements"})
	require.NoError(t, err)
	assert.True(t, f.seedAchievements)

	_, err = parseFlags([]string{"-migrate", "sideways"})
	assert.Error(t, err)
}

func TestSRSParams(t *testing.T) {
	t.Parallel()

	quadratic := 0.0
	params := srsParams(config.SRSConfig{
		MaxEaseFactor:  3.0,
		SecondInterval: 4,
		MaxInterval:    3650,
		EaseQuadratic:  &quadratic,
	})
	assert.InDelta(t, 3.0, params.MaxEaseFactor, 1e-9)
	assert.Equal(t, 4, params.SecondInterval)
	assert.Equal(t, 3650, params.MaxInterval)
	assert.Zero(t, params.EaseQuadratic)
	assert.Equal(t, 1, params.FirstInterval, "unset values keep the defaults")
	assert.InDelta(t, 0.08, params.EaseLinear, 1e-9, "unset coefficients keep the defaults")
	assert.NoError(t, params.Validate())
}

func TestNewApplication_RejectsShortSecret(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Auth.JWTSecret = "short"
	log, _ := logger.NewTestLogger(t)
	_, err := newApplication(cfg, log, nil, memoryBackend(memory.NewDB()))
	assert.Error(t, err)
}

func TestRouter_EndToEnd(t *testing.T) {
	t.Parallel()

	app, db := newTestApp(t)
	router := app.setupRouter()

	lesson := domain.Lesson{
		ID:    uuid.New(),
		Slug:  "greetings",
		Title: "Greetings",
		Exercises: []domain.Exercise{
			{ID: uuid.New(), Type: domain.ExerciseMultipleChoice, Answer: "Hallo", Order: 1},
		},
	}
	db.AddLesson(lesson)
	cardID := uuid.New()
	db.AddCards(domain.Card{ID: cardID, DeckID: uuid.New(), Front: "der Hund", Back: "the dog"})

	userID := uuid.New()
	token, err := app.jwtService.GenerateToken(context.Background(), userID, time.Hour)
	require.NoError(t, err)

	do := func(method, path, body string, authenticated bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if authenticated {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(http.MethodGet, "/api/profile", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(http.MethodPost, "/api/profile", "", true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	quizBody := fmt.Sprintf(`{"answers": {%q: " Hallo "}}`, lesson.Exercises[0].ID)
	rec = do(http.MethodPost, "/api/lessons/"+lesson.ID.String()+"/quiz", quizBody, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(http.MethodGet, "/api/cards/due", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), cardID.String())

	rec = do(http.MethodPost, "/api/cards/"+cardID.String()+"/review", `{"quality": 5}`, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(http.MethodGet, "/api/profile", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile struct {
		Points       int `json:"points"`
		StreakDays   int `json:"streak_days"`
		Achievements []struct {
			Name string `json:"name"`
		} `json:"achievements"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, 10, profile.Points)
	assert.Equal(t, 1, profile.StreakDays)

	names := make([]string, 0, len(profile.Achievements))
	for _, a := range profile.Achievements {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"Welcome to German Learning Platform", "First Steps"}, names)
}
