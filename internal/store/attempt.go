package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/domain"
)

// QuizAttemptStore defines the interface for lesson quiz attempts.
type QuizAttemptStore interface {
	// Upsert stores the attempt, replacing score, completion and answers of
	// an existing attempt for (user, lesson) while keeping its CreatedAt.
	// Returns true when no attempt existed before.
	Upsert(ctx context.Context, attempt *domain.QuizAttempt) (created bool, err error)

	// Get retrieves the attempt of a user for a lesson.
	// Returns ErrAttemptNotFound if there is none.
	Get(ctx context.Context, userID, lessonID uuid.UUID) (*domain.QuizAttempt, error)

	// WithTx returns a new QuizAttemptStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) QuizAttemptStore
}
