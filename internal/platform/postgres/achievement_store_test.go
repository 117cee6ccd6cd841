package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresAchievementStore_SeedIfAbsent(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	s := NewPostgresAchievementStore(db, nil)

	a, err := domain.NewAchievement("First Steps", "Earn your first 10 points", "🌱", 10)
	require.NoError(t, err)

	mock.ExpectExec("ON CONFLICT \\(name\\) DO NOTHING").
		WithArgs(a.ID, "First Steps", a.Description, a.Icon, 10, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO achievements").WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := s.SeedIfAbsent(context.Background(), a)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.SeedIfAbsent(context.Background(), a)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestPostgresAchievementStore_ListCatalog(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	s := NewPostgresAchievementStore(db, nil)

	now := time.Now().UTC()
	mock.ExpectQuery("FROM achievements").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "icon", "points_required", "created_at"}).
			AddRow(uuid.NewString(), "First Steps", "", "", 10, now).
			AddRow(uuid.NewString(), "Rising Star", "", "", 50, now))

	catalog, err := s.ListCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, catalog, 2)
	assert.Equal(t, "First Steps", catalog[0].Name)
	assert.Equal(t, 50, catalog[1].PointsRequired)
}

func TestPostgresAchievementStore_ListUnlocked(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	s := NewPostgresAchievementStore(db, nil)

	userID := uuid.New()
	unlockedAt := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM achievement_unlocks").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "description", "icon", "points_required", "created_at", "unlocked_at",
		}).AddRow(uuid.NewString(), "First Steps", "d", "i", 10, unlockedAt, unlockedAt))

	unlocked, err := s.ListUnlocked(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "First Steps", unlocked[0].Name)
	assert.Equal(t, unlockedAt, unlocked[0].UnlockedAt)
}

func TestPostgresAchievementStore_UnlockIfAbsent(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	s := NewPostgresAchievementStore(db, nil)

	userID, achievementID := uuid.New(), uuid.New()
	at := time.Now().UTC()

	mock.ExpectExec("INSERT INTO achievement_unlocks").
		WithArgs(userID, achievementID, at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO achievement_unlocks").
		WillReturnResult(sqlmock.NewResult(0, 0))

	unlocked, err := s.UnlockIfAbsent(context.Background(), userID, achievementID, at)
	require.NoError(t, err)
	assert.True(t, unlocked)

	unlocked, err = s.UnlockIfAbsent(context.Background(), userID, achievementID, at)
	require.NoError(t, err)
	assert.False(t, unlocked, "an achievement is unlocked at most once")
}
