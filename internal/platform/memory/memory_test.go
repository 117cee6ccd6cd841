package memory

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/domain"
	"github.com/phrazzld/sprachweg/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedger(t *testing.T, db *DB) uuid.UUID {
	t.Helper()
	p, err := domain.NewUserProgress(uuid.New(), time.Now())
	require.NoError(t, err)
	created, err := NewUserProgressStore(db).CreateIfAbsent(context.Background(), p)
	require.NoError(t, err)
	require.True(t, created)
	return p.UserID
}

func TestUserProgressStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := NewDB()
	s := NewUserProgressStore(db)

	userID := newLedger(t, db)

	again, err := domain.NewUserProgress(userID, time.Now())
	require.NoError(t, err)
	again.Points = 99
	created, err := s.CreateIfAbsent(ctx, again)
	require.NoError(t, err)
	assert.False(t, created)

	p, err := s.GetForUpdate(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Points, "an existing ledger is not overwritten")

	p.Points = 15
	require.NoError(t, s.Update(ctx, p))

	p.Points = 1000
	stored, err := s.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 15, stored.Points, "returned values are copies")

	_, err = s.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	missing, err := domain.NewUserProgress(uuid.New(), time.Now())
	require.NoError(t, err)
	assert.ErrorIs(t, s.Update(ctx, missing), store.ErrUserNotFound)
}

func TestCardReviewStateStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := NewDB()
	s := NewCardReviewStateStore(db)
	userID := newLedger(t, db)

	asOf := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	put := func(cardID uuid.UUID, next time.Time) {
		state := domain.NewCardReviewState(userID, cardID, asOf.AddDate(0, 0, -30))
		state.NextReview = next
		require.NoError(t, s.Upsert(ctx, state))
	}

	overdue, dueNow, later := uuid.New(), uuid.New(), uuid.New()
	put(dueNow, asOf)
	put(later, asOf.Add(time.Hour))
	put(overdue, asOf.AddDate(0, 0, -2))

	due, err := s.ListDue(ctx, userID, asOf, 10)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, overdue, due[0].CardID)
	assert.Equal(t, dueNow, due[1].CardID)

	due, err = s.ListDue(ctx, userID, asOf, 1)
	require.NoError(t, err)
	assert.Len(t, due, 1)

	due, err = s.ListDue(ctx, uuid.New(), asOf, 10)
	require.NoError(t, err)
	assert.Empty(t, due)

	state, found, err := s.LookupForUpdate(ctx, userID, later)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, asOf.Add(time.Hour), state.NextReview)

	_, found, err = s.Lookup(ctx, userID, uuid.New())
	require.NoError(t, err)
	assert.False(t, found)

	orphan := domain.NewCardReviewState(uuid.New(), uuid.New(), asOf)
	assert.ErrorIs(t, s.Upsert(ctx, orphan), store.ErrInvalidEntity)
}

func TestAchievementStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := NewDB()
	s := NewAchievementStore(db)
	userID := newLedger(t, db)

	big, err := domain.NewAchievement("Dedicated Learner", "", "", 200)
	require.NoError(t, err)
	small, err := domain.NewAchievement("First Steps", "", "", 10)
	require.NoError(t, err)

	for _, a := range []*domain.Achievement{big, small} {
		created, err := s.SeedIfAbsent(ctx, a)
		require.NoError(t, err)
		assert.True(t, created)
	}

	dup, err := domain.NewAchievement("First Steps", "other", "", 999)
	require.NoError(t, err)
	created, err := s.SeedIfAbsent(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created, "names are unique")

	catalog, err := s.ListCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, catalog, 2)
	assert.Equal(t, "First Steps", catalog[0].Name)
	assert.Equal(t, "Dedicated Learner", catalog[1].Name)

	at := time.Now()
	unlocked, err := s.UnlockIfAbsent(ctx, userID, small.ID, at)
	require.NoError(t, err)
	assert.True(t, unlocked)

	unlocked, err = s.UnlockIfAbsent(ctx, userID, small.ID, at.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, unlocked)

	list, err := s.ListUnlocked(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, small.ID, list[0].ID)
	assert.True(t, at.UTC().Equal(list[0].UnlockedAt), "the first unlock time is kept")

	_, err = s.UnlockIfAbsent(ctx, userID, uuid.New(), at)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestQuizAttemptStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := NewDB()
	s := NewQuizAttemptStore(db)
	userID := newLedger(t, db)
	lessonID := uuid.New()

	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a, err := domain.NewQuizAttempt(userID, lessonID, 40, map[string]string{"a": "1"}, first)
	require.NoError(t, err)
	created, err := s.Upsert(ctx, a)
	require.NoError(t, err)
	assert.True(t, created)

	b, err := domain.NewQuizAttempt(userID, lessonID, 90, map[string]string{"a": "2"}, first.AddDate(0, 0, 1))
	require.NoError(t, err)
	created, err = s.Upsert(ctx, b)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first, b.CreatedAt)

	stored, err := s.Get(ctx, userID, lessonID)
	require.NoError(t, err)
	assert.Equal(t, 90, stored.Score)
	assert.Equal(t, map[string]string{"a": "2"}, stored.Answers)

	_, err = s.Get(ctx, userID, uuid.New())
	assert.ErrorIs(t, err, store.ErrAttemptNotFound)
}

func TestContentStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := NewDB()
	s := NewContentStore(db)
	userID := newLedger(t, db)

	deckA, deckB := uuid.New(), uuid.New()
	a1 := domain.Card{ID: uuid.New(), DeckID: deckA, Front: "eins", Back: "one"}
	b1 := domain.Card{ID: uuid.New(), DeckID: deckB, Front: "rot", Back: "red"}
	a2 := domain.Card{ID: uuid.New(), DeckID: deckA, Front: "zwei", Back: "two"}
	db.AddCards(a1, b1, a2)

	lesson := domain.Lesson{
		ID:        uuid.New(),
		Slug:      "numbers",
		Exercises: []domain.Exercise{{ID: uuid.New(), Type: domain.ExerciseFillBlank, Answer: "drei"}},
	}
	db.AddLesson(lesson)

	got, err := s.GetLesson(ctx, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, "numbers", got.Slug)
	require.Len(t, got.Exercises, 1)

	_, err = s.GetLesson(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrLessonNotFound)

	card, err := s.GetCard(ctx, b1.ID)
	require.NoError(t, err)
	assert.Equal(t, "rot", card.Front)

	_, err = s.GetCard(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrCardNotFound)

	ids, err := s.ListUnreviewedCardIDs(ctx, userID, 10)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a1.ID, a2.ID, b1.ID}, ids, "deck order, then card order")

	state := domain.NewCardReviewState(userID, a2.ID, time.Now())
	require.NoError(t, NewCardReviewStateStore(db).Upsert(ctx, state))

	ids, err = s.ListUnreviewedCardIDs(ctx, userID, 10)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a1.ID, b1.ID}, ids)

	ids, err = s.ListUnreviewedCardIDs(ctx, userID, 1)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a1.ID}, ids)
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := NewDB()
	progress := NewUserProgressStore(db)
	userID := newLedger(t, db)
	tm := NewTxManager(db)

	failure := errors.New("boom")
	err := tm.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		assert.Nil(t, tx)
		p, err := progress.WithTx(tx).GetForUpdate(ctx, userID)
		require.NoError(t, err)
		p.Points = 50
		require.NoError(t, progress.WithTx(tx).Update(ctx, p))
		return failure
	})
	assert.ErrorIs(t, err, failure)

	p, err := progress.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Points)

	err = tm.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		p, err := progress.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		p.Points = 20
		return progress.Update(ctx, p)
	})
	require.NoError(t, err)

	p, err = progress.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 20, p.Points)
}

func TestTxManager_StagesWritesUntilCommit(t *testing.T) {
	t.Parallel()
	outer := context.Background()
	db := NewDB()
	progress := NewUserProgressStore(db)
	states := NewCardReviewStateStore(db)
	userID := newLedger(t, db)
	cardID := uuid.New()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	err := NewTxManager(db).RunInTransaction(outer, func(ctx context.Context, tx *sql.Tx) error {
		p, err := progress.WithTx(tx).GetForUpdate(ctx, userID)
		require.NoError(t, err)
		p.Points = 30
		require.NoError(t, progress.WithTx(tx).Update(ctx, p))
		require.NoError(t, states.WithTx(tx).Upsert(ctx, domain.NewCardReviewState(userID, cardID, now)))

		// The transaction sees its own writes
		inside, err := progress.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 30, inside.Points)

		// Other readers only see committed state
		committed, err := progress.Get(outer, userID)
		require.NoError(t, err)
		assert.Equal(t, 0, committed.Points)
		_, found, err := states.Lookup(outer, userID, cardID)
		require.NoError(t, err)
		assert.False(t, found)
		return nil
	})
	require.NoError(t, err)

	p, err := progress.Get(outer, userID)
	require.NoError(t, err)
	assert.Equal(t, 30, p.Points)
	_, found, err := states.Lookup(outer, userID, cardID)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestTxManager_RollsBackOnPanic(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := NewDB()
	progress := NewUserProgressStore(db)
	userID := newLedger(t, db)
	tm := NewTxManager(db)

	assert.Panics(t, func() {
		_ = tm.RunInTransaction(ctx, func(ctx context.Context, _ *sql.Tx) error {
			p, _ := progress.Get(ctx, userID)
			p.Points = 7
			_ = progress.Update(ctx, p)
			panic("unexpected")
		})
	})

	p, err := progress.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Points)

	// The transaction lock was released.
	assert.NoError(t, tm.RunInTransaction(ctx, func(context.Context, *sql.Tx) error { return nil }))
}

func TestTxManager_CancelledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := NewTxManager(NewDB()).RunInTransaction(ctx, func(context.Context, *sql.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
