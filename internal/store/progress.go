package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/domain"
)

// UserProgressStore defines the interface for a learner's points and streak ledger.
type UserProgressStore interface {
	// CreateIfAbsent saves a new ledger unless one exists for the user.
	// Returns true when the ledger was created.
	// Returns validation errors from the domain UserProgress if data is invalid.
	CreateIfAbsent(ctx context.Context, progress *domain.UserProgress) (bool, error)

	// Get retrieves the ledger of a user.
	// Returns ErrUserNotFound if the user has no ledger.
	// NOTE: This method does NOT lock the row; use GetForUpdate before a
	// read-modify-write.
	Get(ctx context.Context, userID uuid.UUID) (*domain.UserProgress, error)

	// GetForUpdate retrieves the ledger with a row-level lock using SELECT FOR UPDATE.
	// Locking the ledger serialises every submission of the same learner, so
	// it must be the first read of a submission transaction.
	// Returns ErrUserNotFound if the user has no ledger.
	GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.UserProgress, error)

	// Update writes points, streak, last active day and daily goal.
	// Returns ErrUserNotFound if the user has no ledger.
	Update(ctx context.Context, progress *domain.UserProgress) error

	// WithTx returns a new UserProgressStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserProgressStore
}
