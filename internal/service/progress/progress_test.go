package progress

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/config"
	"github.com/phrazzld/sprachweg/internal/domain"
	"github.com/phrazzld/sprachweg/internal/events"
	"github.com/phrazzld/sprachweg/internal/platform/memory"
	"github.com/phrazzld/sprachweg/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db     *memory.DB
	engine *AchievementEngine
	ledger *Ledger
}

func newFixture(t *testing.T, cfg config.ProgressConfig) *fixture {
	t.Helper()
	db := memory.NewDB()
	engine := NewAchievementEngine(memory.NewAchievementStore(db), nil)
	_, err := engine.SeedCatalog(context.Background(), DefaultCatalog())
	require.NoError(t, err)

	ledger, err := NewLedger(memory.NewUserProgressStore(db), engine, cfg, nil)
	require.NoError(t, err)
	return &fixture{db: db, engine: engine, ledger: ledger}
}

func defaultConfig() config.ProgressConfig {
	return config.ProgressConfig{PointsDivisor: 10, DefaultDailyGoal: 5, TimeZone: "UTC"}
}

func (f *fixture) register(t *testing.T, now time.Time) uuid.UUID {
	t.Helper()
	userID := uuid.New()
	_, _, err := f.ledger.RegisterLearner(context.Background(), nil, userID, now)
	require.NoError(t, err)
	return userID
}

func (f *fixture) progress(t *testing.T, userID uuid.UUID) *domain.UserProgress {
	t.Helper()
	p, err := memory.NewUserProgressStore(f.db).Get(context.Background(), userID)
	require.NoError(t, err)
	return p
}

func (f *fixture) unlockedNames(t *testing.T, userID uuid.UUID) []string {
	t.Helper()
	unlocked, err := memory.NewAchievementStore(f.db).ListUnlocked(context.Background(), userID)
	require.NoError(t, err)
	names := make([]string, 0, len(unlocked))
	for _, a := range unlocked {
		names = append(names, a.Name)
	}
	return names
}

func completion(userID uuid.UUID, score int, first bool, at time.Time) *events.CompletionEvent {
	return events.NewCompletionEvent(userID, uuid.New(), score, map[string]string{}, first, at)
}

type unknownEvent struct{ id uuid.UUID }

func (e unknownEvent) EventID() uuid.UUID { return e.id }
func (e unknownEvent) EventType() string { return "lesson.viewed" }
func (e unknownEvent) Learner() uuid.UUID { return uuid.Nil }
func (e unknownEvent) Time() time.Time { return time.Time{} }

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	thresholds := map[string]int{}
	for _, entry := range DefaultCatalog() {
		thresholds[entry.Name] = entry.PointsRequired
	}
	assert.Equal(t, map[string]int{
		"Welcome to German Learning Platform": 0,
		"First Steps":                         10,
		"Vocabulary Master":                   50,
		"7-Day Streak":                        70,
		"Dedicated Learner":                   100,
	}, thresholds)
}

func TestAchievementEngine_SeedCatalogIsIdempotent(t *testing.T) {
	t.Parallel()
	db := memory.NewDB()
	engine := NewAchievementEngine(memory.NewAchievementStore(db), nil)

	inserted, err := engine.SeedCatalog(context.Background(), DefaultCatalog())
	require.NoError(t, err)
	assert.Equal(t, 5, inserted)

	inserted, err = engine.SeedCatalog(context.Background(), DefaultCatalog())
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	catalog, err := memory.NewAchievementStore(db).ListCatalog(context.Background())
	require.NoError(t, err)
	assert.Len(t, catalog, 5)

	_, err = engine.SeedCatalog(context.Background(), []CatalogEntry{{Name: " ", PointsRequired: 1}})
	assert.ErrorIs(t, err, domain.ErrEmptyAchievementName)
}

func TestAchievementEngine_Check(t *testing.T) {
	t.Parallel()
	f := newFixture(t, defaultConfig())
	ctx := context.Background()
	now := time.Now()
	userID := f.register(t, now)

	unlocked, err := f.engine.Check(ctx, nil, userID, 55, now)
	require.NoError(t, err)
	names := []string{}
	for _, a := range unlocked {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"First Steps", "Vocabulary Master"}, names,
		"only achievements newly crossed are returned")

	unlocked, err = f.engine.Check(ctx, nil, userID, 55, now)
	require.NoError(t, err)
	assert.Empty(t, unlocked, "a repeated check unlocks nothing")

	assert.ElementsMatch(t,
		[]string{"Welcome to German Learning Platform", "First Steps", "Vocabulary Master"},
		f.unlockedNames(t, userID))
}

func TestLedger_RegisterLearner(t *testing.T) {
	t.Parallel()
	f := newFixture(t, config.ProgressConfig{PointsDivisor: 10, DefaultDailyGoal: 8, TimeZone: "UTC"})
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	p, unlocked, err := f.ledger.RegisterLearner(ctx, nil, userID, now)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Points)
	assert.Equal(t, 8, p.DailyGoal)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "Welcome to German Learning Platform", unlocked[0].Name)

	_, unlocked, err = f.ledger.RegisterLearner(ctx, nil, userID, now)
	require.NoError(t, err)
	assert.Empty(t, unlocked)
}

func TestLedger_CompletionAwardsPointsOnFirstCompletionOnly(t *testing.T) {
	t.Parallel()
	f := newFixture(t, defaultConfig())
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	userID := f.register(t, now)

	require.NoError(t, f.ledger.HandleEvent(ctx, nil, completion(userID, 87, true, now)))
	p := f.progress(t, userID)
	assert.Equal(t, 8, p.Points, "87 / 10 with integer division")
	assert.Equal(t, 1, p.StreakDays)

	require.NoError(t, f.ledger.HandleEvent(ctx, nil, completion(userID, 100, false, now.Add(time.Hour))))
	p = f.progress(t, userID)
	assert.Equal(t, 8, p.Points, "repeat completions award nothing")
	assert.Equal(t, 1, p.StreakDays)
}

func TestLedger_CompletionUnlocksAchievements(t *testing.T) {
	t.Parallel()
	f := newFixture(t, defaultConfig())
	ctx := context.Background()
	now := time.Now()
	userID := f.register(t, now)

	require.NoError(t, f.ledger.HandleEvent(ctx, nil, completion(userID, 100, true, now)))

	assert.Equal(t, 10, f.progress(t, userID).Points)
	assert.Contains(t, f.unlockedNames(t, userID), "First Steps")
}

func TestLedger_StreakTransitions(t *testing.T) {
	t.Parallel()
	f := newFixture(t, defaultConfig())
	ctx := context.Background()
	day1 := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	userID := f.register(t, day1)
	cardID := uuid.New()

	review := func(at time.Time) *domain.UserProgress {
		require.NoError(t, f.ledger.HandleEvent(ctx, nil, events.NewReviewEvent(userID, cardID, 4, at)))
		return f.progress(t, userID)
	}

	p := review(day1)
	assert.Equal(t, 1, p.StreakDays, "first activity starts the streak")

	p = review(day1.Add(10 * time.Hour))
	assert.Equal(t, 1, p.StreakDays, "same day changes nothing")

	p = review(day1.AddDate(0, 0, 1))
	assert.Equal(t, 2, p.StreakDays, "consecutive day extends the streak")

	p = review(day1.AddDate(0, 0, 4))
	assert.Equal(t, 1, p.StreakDays, "a gap restarts the streak")
	assert.Equal(t, time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), p.LastActive)

	p = review(day1.AddDate(0, 0, 2))
	assert.Equal(t, 1, p.StreakDays, "an earlier day is ignored")
	assert.Equal(t, time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), p.LastActive)
}

func TestLedger_ActivityDayUsesConfiguredTimeZone(t *testing.T) {
	t.Parallel()
	f := newFixture(t, config.ProgressConfig{PointsDivisor: 10, DefaultDailyGoal: 5, TimeZone: "Europe/Berlin"})
	ctx := context.Background()

	// 23:30 UTC on March 1st is already March 2nd in Berlin.
	at := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	userID := f.register(t, at)

	_, err := f.ledger.TouchActivity(ctx, nil, userID, at)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), f.progress(t, userID).LastActive)
}

func TestLedger_AddPoints(t *testing.T) {
	t.Parallel()
	f := newFixture(t, defaultConfig())
	ctx := context.Background()
	now := time.Now()
	userID := f.register(t, now)

	_, err := f.ledger.AddPoints(ctx, nil, userID, -1, now)
	assert.ErrorIs(t, err, domain.ErrValidation)

	unlocked, err := f.ledger.AddPoints(ctx, nil, userID, 70, now)
	require.NoError(t, err)
	assert.Len(t, unlocked, 3)
	assert.Equal(t, 70, f.progress(t, userID).Points)

	unlocked, err = f.ledger.AddPoints(ctx, nil, userID, 0, now)
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	_, err = f.ledger.AddPoints(ctx, nil, uuid.New(), 5, now)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestLedger_SetDailyGoal(t *testing.T) {
	t.Parallel()
	f := newFixture(t, defaultConfig())
	ctx := context.Background()
	now := time.Now()
	userID := f.register(t, now)

	_, err := f.ledger.SetDailyGoal(ctx, nil, userID, 0, now)
	assert.ErrorIs(t, err, domain.ErrValidation)

	p, err := f.ledger.SetDailyGoal(ctx, nil, userID, 12, now)
	require.NoError(t, err)
	assert.Equal(t, 12, p.DailyGoal)
	assert.Equal(t, 12, f.progress(t, userID).DailyGoal)
}

func TestLedger_IgnoresUnknownEvents(t *testing.T) {
	t.Parallel()
	f := newFixture(t, defaultConfig())

	event := unknownEvent{id: uuid.New()}
	assert.NoError(t, f.ledger.HandleEvent(context.Background(), nil, event))
}

func TestNewLedger_InvalidConfig(t *testing.T) {
	t.Parallel()
	db := memory.NewDB()
	engine := NewAchievementEngine(memory.NewAchievementStore(db), nil)

	_, err := NewLedger(memory.NewUserProgressStore(db), engine, config.ProgressConfig{PointsDivisor: 0}, nil)
	assert.Error(t, err)

	_, err = NewLedger(memory.NewUserProgressStore(db), engine,
		config.ProgressConfig{PointsDivisor: 10, TimeZone: "Mars/Olympus"}, nil)
	assert.Error(t, err)
}
