package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecallQuality_Valid(t *testing.T) {
	t.Parallel()

	for q := QualityBlackout; q <= QualityPerfect; q++ {
		assert.True(t, q.Valid(), "quality %d should be valid", q)
	}
	assert.False(t, RecallQuality(-1).Valid())
	assert.False(t, RecallQuality(6).Valid())
}

func TestNewCardReviewState(t *testing.T) {
	t.Parallel()

	now := time.Now()
	s := NewCardReviewState(uuid.New(), uuid.New(), now)

	assert.Equal(t, DefaultEaseFactor, s.EaseFactor)
	assert.Equal(t, DefaultInterval, s.Interval)
	assert.Equal(t, 0, s.ReviewCount)
	assert.True(t, s.IsDue(now))
	require.NoError(t, s.Validate())
}

func TestCardReviewState_Validate(t *testing.T) {
	t.Parallel()

	valid := func() *CardReviewState {
		return NewCardReviewState(uuid.New(), uuid.New(), time.Now())
	}

	testCases := []struct {
		name   string
		mutate func(*CardReviewState)
		want   error
	}{
		{"missing user", func(s *CardReviewState) { s.UserID = uuid.Nil }, ErrEmptyStateUserID},
		{"missing card", func(s *CardReviewState) { s.CardID = uuid.Nil }, ErrEmptyStateCardID},
		{"zero interval", func(s *CardReviewState) { s.Interval = 0 }, ErrInvalidInterval},
		{"ease below floor", func(s *CardReviewState) { s.EaseFactor = 1.2 }, ErrInvalidEaseFactor},
		{"negative reviews", func(s *CardReviewState) { s.ReviewCount = -1 }, ErrNegativeReviews},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := valid()
			tc.mutate(s)
			assert.ErrorIs(t, s.Validate(), tc.want)
		})
	}
}

func TestNewAchievement(t *testing.T) {
	t.Parallel()

	a, err := NewAchievement("  First Steps ", "Complete your first lesson", "fas fa-shoe-prints", 10)
	require.NoError(t, err)
	assert.Equal(t, "First Steps", a.Name)
	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.True(t, a.QualifiesAt(10))
	assert.False(t, a.QualifiesAt(9))

	_, err = NewAchievement(" ", "", "", 0)
	assert.ErrorIs(t, err, ErrEmptyAchievementName)

	_, err = NewAchievement("Broken", "", "", -5)
	assert.ErrorIs(t, err, ErrNegativePointsRequired)
}

func TestNewQuizAttempt(t *testing.T) {
	t.Parallel()

	userID, lessonID := uuid.New(), uuid.New()

	a, err := NewQuizAttempt(userID, lessonID, 75, nil, time.Now())
	require.NoError(t, err)
	assert.True(t, a.Completed)
	assert.NotNil(t, a.Answers)

	_, err = NewQuizAttempt(userID, lessonID, 101, nil, time.Now())
	assert.ErrorIs(t, err, ErrInvalidScore)

	_, err = NewQuizAttempt(uuid.Nil, lessonID, 50, nil, time.Now())
	assert.ErrorIs(t, err, ErrEmptyAttemptUserID)
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	err := NewValidationError("quality", "must be between 0 and 5", nil)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "quality must be between 0 and 5", err.Error())

	wrapped := NewValidationError("id", "has invalid format", ErrInvalidID)
	assert.ErrorIs(t, wrapped, ErrInvalidID)
}
