package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/domain"
	"github.com/phrazzld/sprachweg/internal/platform/logger"
	"github.com/phrazzld/sprachweg/internal/store"
)

// PostgresAchievementStore implements the store.AchievementStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAchievementStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAchievementStore creates a new PostgreSQL implementation of the AchievementStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresAchievementStore(db store.DBTX, logger *slog.Logger) *PostgresAchievementStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAchievementStore{
		db:     db,
		logger: logger.With(slog.String("component", "achievement_store")),
	}
}

// Ensure PostgresAchievementStore implements store.AchievementStore interface
var _ store.AchievementStore = (*PostgresAchievementStore)(nil)

// SeedIfAbsent implements store.AchievementStore.SeedIfAbsent
func (s *PostgresAchievementStore) SeedIfAbsent(ctx context.Context, a *domain.Achievement) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := a.Validate(); err != nil {
		return false, err
	}

	query := `
		INSERT INTO achievements (id, name, description, icon, points_required, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO NOTHING
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		a.ID,
		a.Name,
		a.Description,
		a.Icon,
		a.PointsRequired,
		a.CreatedAt,
	)
	if err != nil {
		log.Error("failed to seed achievement",
			slog.String("error", err.Error()),
			slog.String("name", a.Name))
		return false, MapError(err)
	}

	created, err := rowsInserted(result)
	if err != nil {
		return false, err
	}
	if created {
		log.Info("achievement seeded",
			slog.String("name", a.Name),
			slog.Int("points_required", a.PointsRequired))
	}
	return created, nil
}

// ListCatalog implements store.AchievementStore.ListCatalog
func (s *PostgresAchievementStore) ListCatalog(ctx context.Context) ([]*domain.Achievement, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, description, icon, points_required, created_at
		FROM achievements
		ORDER BY points_required ASC, name ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list achievements", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	catalog := []*domain.Achievement{}
	for rows.Next() {
		var a domain.Achievement
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Icon, &a.PointsRequired, &a.CreatedAt); err != nil {
			return nil, MapError(err)
		}
		catalog = append(catalog, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return catalog, nil
}

// ListUnlocked implements store.AchievementStore.ListUnlocked
func (s *PostgresAchievementStore) ListUnlocked(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.UnlockedAchievement, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT a.id, a.name, a.description, a.icon, a.points_required, a.created_at, u.unlocked_at
		FROM achievement_unlocks u
		JOIN achievements a ON a.id = u.achievement_id
		WHERE u.user_id = $1
		ORDER BY u.unlocked_at ASC, a.points_required ASC, a.name ASC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list unlocked achievements",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	unlocked := []*domain.UnlockedAchievement{}
	for rows.Next() {
		var u domain.UnlockedAchievement
		if err := rows.Scan(
			&u.ID,
			&u.Name,
			&u.Description,
			&u.Icon,
			&u.PointsRequired,
			&u.CreatedAt,
			&u.UnlockedAt,
		); err != nil {
			return nil, MapError(err)
		}
		u.UnlockedAt = u.UnlockedAt.UTC()
		unlocked = append(unlocked, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return unlocked, nil
}

// UnlockIfAbsent implements store.AchievementStore.UnlockIfAbsent
func (s *PostgresAchievementStore) UnlockIfAbsent(
	ctx context.Context,
	userID, achievementID uuid.UUID,
	at time.Time,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO achievement_unlocks (user_id, achievement_id, unlocked_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, query, userID, achievementID, at.UTC())
	if err != nil {
		log.Error("failed to unlock achievement",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("achievement_id", achievementID.String()))
		return false, MapError(err)
	}

	return rowsInserted(result)
}

// WithTx implements store.AchievementStore.WithTx
func (s *PostgresAchievementStore) WithTx(tx *sql.Tx) store.AchievementStore {
	if tx == nil {
		return s
	}
	return &PostgresAchievementStore{
		db:     tx,
		logger: s.logger,
	}
}
