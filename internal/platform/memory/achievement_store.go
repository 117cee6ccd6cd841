package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/domain"
	"github.com/phrazzld/sprachweg/internal/store"
)

// AchievementStore implements store.AchievementStore in memory.
type AchievementStore struct {
	db *DB
}

// NewAchievementStore creates an AchievementStore backed by db.
func NewAchievementStore(db *DB) *AchievementStore {
	return &AchievementStore{db: db}
}

// Ensure AchievementStore implements store.AchievementStore interface
var _ store.AchievementStore = (*AchievementStore)(nil)

func sortCatalog(catalog []*domain.Achievement) {
	sort.Slice(catalog, func(i, j int) bool {
		if catalog[i].PointsRequired != catalog[j].PointsRequired {
			return catalog[i].PointsRequired < catalog[j].PointsRequired
		}
		return catalog[i].Name < catalog[j].Name
	})
}

// SeedIfAbsent implements store.AchievementStore.SeedIfAbsent.
// Entries are unique by name.
func (s *AchievementStore) SeedIfAbsent(ctx context.Context, a *domain.Achievement) (bool, error) {
	if err := a.Validate(); err != nil {
		return false, err
	}

	created := false
	s.db.write(ctx, func(t *tables) {
		for _, existing := range t.achievements {
			if existing.Name == a.Name {
				return
			}
		}
		t.achievements[a.ID] = *a
		created = true
	})
	return created, nil
}

// ListCatalog implements store.AchievementStore.ListCatalog
func (s *AchievementStore) ListCatalog(ctx context.Context) ([]*domain.Achievement, error) {
	catalog := []*domain.Achievement{}
	s.db.read(ctx, func(t *tables) {
		for _, a := range t.achievements {
			catalog = append(catalog, &a)
		}
	})
	sortCatalog(catalog)
	return catalog, nil
}

// ListUnlocked implements store.AchievementStore.ListUnlocked
func (s *AchievementStore) ListUnlocked(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.UnlockedAchievement, error) {
	unlocked := []*domain.UnlockedAchievement{}
	s.db.read(ctx, func(t *tables) {
		for key, at := range t.unlocks {
			if key.userID != userID {
				continue
			}
			a, ok := t.achievements[key.otherID]
			if !ok {
				continue
			}
			unlocked = append(unlocked, &domain.UnlockedAchievement{Achievement: a, UnlockedAt: at})
		}
	})

	sort.Slice(unlocked, func(i, j int) bool {
		if !unlocked[i].UnlockedAt.Equal(unlocked[j].UnlockedAt) {
			return unlocked[i].UnlockedAt.Before(unlocked[j].UnlockedAt)
		}
		if unlocked[i].PointsRequired != unlocked[j].PointsRequired {
			return unlocked[i].PointsRequired < unlocked[j].PointsRequired
		}
		return unlocked[i].Name < unlocked[j].Name
	})
	return unlocked, nil
}

// UnlockIfAbsent implements store.AchievementStore.UnlockIfAbsent
func (s *AchievementStore) UnlockIfAbsent(
	ctx context.Context,
	userID, achievementID uuid.UUID,
	at time.Time,
) (bool, error) {
	var (
		unlocked bool
		err      error
	)
	s.db.write(ctx, func(t *tables) {
		if _, ok := t.progress[userID]; !ok {
			err = fmt.Errorf("%w: no ledger for user %s", store.ErrInvalidEntity, userID)
			return
		}
		if _, ok := t.achievements[achievementID]; !ok {
			err = fmt.Errorf("%w: unknown achievement %s", store.ErrInvalidEntity, achievementID)
			return
		}
		key := pairKey{userID, achievementID}
		if _, ok := t.unlocks[key]; ok {
			return
		}
		t.unlocks[key] = at.UTC()
		unlocked = true
	})
	return unlocked, err
}

// WithTx implements store.AchievementStore.WithTx
func (s *AchievementStore) WithTx(*sql.Tx) store.AchievementStore {
	return s
}
