package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/domain"
)

// AchievementStore defines the interface for the achievement catalog and
// per-user unlocks.
type AchievementStore interface {
	// SeedIfAbsent inserts a catalog entry unless one with the same name exists.
	// Existing entries are never modified. Returns true when inserted.
	SeedIfAbsent(ctx context.Context, achievement *domain.Achievement) (bool, error)

	// ListCatalog returns every catalog entry ordered by points required, then name.
	ListCatalog(ctx context.Context) ([]*domain.Achievement, error)

	// ListUnlocked returns the achievements a user has unlocked, oldest first.
	ListUnlocked(ctx context.Context, userID uuid.UUID) ([]*domain.UnlockedAchievement, error)

	// UnlockIfAbsent records an unlock unless the user already has it.
	// Returns true when this call created the unlock.
	UnlockIfAbsent(ctx context.Context, userID, achievementID uuid.UUID, at time.Time) (bool, error)

	// WithTx returns a new AchievementStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) AchievementStore
}
