package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/sprachweg/internal/domain"
	"github.com/phrazzld/sprachweg/internal/service/auth"
	"github.com/phrazzld/sprachweg/internal/service/learning"
	"github.com/phrazzld/sprachweg/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func structValidationError(t *testing.T) error {
	t.Helper()
	err := validator.New().Struct(&DailyGoalRequest{DailyGoal: 0})
	require.Error(t, err)
	return err
}

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "nil error", err: nil, expectedStatus: http.StatusInternalServerError},
		{name: "invalid token", err: auth.ErrInvalidToken, expectedStatus: http.StatusUnauthorized},
		{
			name:           "wrapped expired token",
			err:            fmt.Errorf("failed to authenticate: %w", auth.ErrExpiredToken),
			expectedStatus: http.StatusUnauthorized,
		},
		{name: "anonymous learner", err: learning.ErrLearnerRequired, expectedStatus: http.StatusUnauthorized},
		{name: "learner not found", err: store.ErrUserNotFound, expectedStatus: http.StatusNotFound},
		{name: "lesson not found", err: store.ErrLessonNotFound, expectedStatus: http.StatusNotFound},
		{
			name:           "wrapped card not found",
			err:            fmt.Errorf("get card: %w", store.ErrCardNotFound),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "concurrency conflict",
			err:            fmt.Errorf("%w: %w", learning.ErrConcurrencyConflict, store.ErrConflict),
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "invalid quality",
			err:            domain.NewValidationError("quality", "must be between 0 and 5", domain.ErrInvalidRecallQuality),
			expectedStatus: http.StatusBadRequest,
		},
		{name: "invalid id", err: domain.ErrInvalidID, expectedStatus: http.StatusBadRequest},
		{name: "invalid entity", err: store.ErrInvalidEntity, expectedStatus: http.StatusBadRequest},
		{name: "struct validation", err: structValidationError(t), expectedStatus: http.StatusBadRequest},
		{name: "deadline", err: context.DeadlineExceeded, expectedStatus: http.StatusGatewayTimeout},
		{
			name:           "service error",
			err:            learning.NewServiceError("submit_quiz", "failed", errors.New("disk full")),
			expectedStatus: http.StatusInternalServerError,
		},
		{name: "unknown error", err: errors.New("unknown error"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedStatus, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: "An unexpected error occurred"},
		{name: "expired token", err: auth.ErrExpiredToken, expected: "Token expired"},
		{name: "invalid token", err: auth.ErrInvalidToken, expected: "Invalid token"},
		{name: "anonymous learner", err: learning.ErrLearnerRequired, expected: "Authentication required"},
		{name: "learner not found", err: store.ErrUserNotFound, expected: "Learner not found"},
		{name: "lesson not found", err: store.ErrLessonNotFound, expected: "Lesson not found"},
		{name: "card not found", err: store.ErrCardNotFound, expected: "Card not found"},
		{name: "generic not found", err: store.ErrNotFound, expected: "Resource not found"},
		{
			name:     "field validation",
			err:      domain.NewValidationError("daily_goal", "must be greater than 0", domain.ErrInvalidDailyGoal),
			expected: "Invalid daily_goal: must be greater than 0",
		},
		{name: "struct validation", err: structValidationError(t), expected: "Invalid DailyGoal: required field"},
		{name: "bare validation", err: domain.ErrNegativePoints, expected: "Invalid request"},
		{
			name:     "internal details are hidden",
			err:      errors.New("pq: password authentication failed for user admin"),
			expected: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	type review struct {
		Quality *int `validate:"required,min=0,max=5"`
	}
	tooHigh := 9
	err := validator.New().Struct(&review{Quality: &tooHigh})
	assert.Equal(t, "Invalid Quality: too large", SanitizeValidationError(err))

	err = validator.New().Struct(&review{})
	assert.Equal(t, "Invalid Quality: required field", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("Key: 'X' Error: secret")))
}
