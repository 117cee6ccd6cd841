package progress

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/domain"
	"github.com/phrazzld/sprachweg/internal/platform/logger"
	"github.com/phrazzld/sprachweg/internal/store"
)

// CatalogEntry describes an achievement to seed.
type CatalogEntry struct {
	Name           string
	Description    string
	Icon           string
	PointsRequired int
}

// DefaultCatalog returns the achievements a fresh deployment starts with.
func DefaultCatalog() []CatalogEntry {
	return []CatalogEntry{
		{
			Name:           "Welcome to German Learning Platform",
			Description:    "You joined the platform!",
			Icon:           "fas fa-star",
			PointsRequired: 0,
		},
		{
			Name:           "First Steps",
			Description:    "Complete your first lesson",
			Icon:           "fas fa-shoe-prints",
			PointsRequired: 10,
		},
		{
			Name:           "Vocabulary Master",
			Description:    "Learn 50 words",
			Icon:           "fas fa-book",
			PointsRequired: 50,
		},
		{
			Name:           "7-Day Streak",
			Description:    "Use the platform for 7 consecutive days",
			Icon:           "fas fa-fire",
			PointsRequired: 70,
		},
		{
			Name:           "Dedicated Learner",
			Description:    "Complete 10 lessons",
			Icon:           "fas fa-graduation-cap",
			PointsRequired: 100,
		},
	}
}

// AchievementEngine unlocks achievements as learners accumulate points.
type AchievementEngine struct {
	achievements store.AchievementStore
	logger       *slog.Logger
}

// NewAchievementEngine creates an AchievementEngine.
func NewAchievementEngine(achievements store.AchievementStore, logger *slog.Logger) *AchievementEngine {
	if achievements == nil {
		panic("achievements cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AchievementEngine{
		achievements: achievements,
		logger:       logger.With(slog.String("component", "achievement_engine")),
	}
}

// Check unlocks every catalog achievement the learner qualifies for at points
// and has not unlocked yet. It returns only the achievements unlocked by this
// call, so repeating a check unlocks nothing.
func (e *AchievementEngine) Check(
	ctx context.Context,
	tx *sql.Tx,
	userID uuid.UUID,
	points int,
	at time.Time,
) ([]*domain.Achievement, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)
	achievements := e.achievements.WithTx(tx)

	catalog, err := achievements.ListCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievement catalog: %w", err)
	}

	unlocked := []*domain.Achievement{}
	for _, a := range catalog {
		if !a.QualifiesAt(points) {
			continue
		}
		created, err := achievements.UnlockIfAbsent(ctx, userID, a.ID, at)
		if err != nil {
			return nil, fmt.Errorf("failed to unlock achievement %q: %w", a.Name, err)
		}
		if created {
			log.Info("achievement unlocked",
				slog.String("user_id", userID.String()),
				slog.String("achievement", a.Name),
				slog.Int("points", points))
			unlocked = append(unlocked, a)
		}
	}

	return unlocked, nil
}

// SeedCatalog inserts the entries that are not in the catalog yet, matching
// by name. Existing entries are left unchanged. It returns how many entries
// were inserted.
func (e *AchievementEngine) SeedCatalog(ctx context.Context, entries []CatalogEntry) (int, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)

	inserted := 0
	for _, entry := range entries {
		a, err := domain.NewAchievement(entry.Name, entry.Description, entry.Icon, entry.PointsRequired)
		if err != nil {
			return inserted, fmt.Errorf("invalid catalog entry %q: %w", entry.Name, err)
		}
		created, err := e.achievements.SeedIfAbsent(ctx, a)
		if err != nil {
			return inserted, fmt.Errorf("failed to seed achievement %q: %w", entry.Name, err)
		}
		if created {
			inserted++
		}
	}

	log.Info("achievement catalog seeded",
		slog.Int("entries", len(entries)),
		slog.Int("inserted", inserted))
	return inserted, nil
}
