package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/domain"
	"github.com/phrazzld/sprachweg/internal/platform/logger"
	"github.com/phrazzld/sprachweg/internal/store"
)

const progressColumns = `user_id, points, streak_days, last_active, daily_goal, created_at, updated_at`

// PostgresUserProgressStore implements the store.UserProgressStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserProgressStore creates a new PostgreSQL implementation of the UserProgressStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresUserProgressStore(db store.DBTX, logger *slog.Logger) *PostgresUserProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_progress_store")),
	}
}

// Ensure PostgresUserProgressStore implements store.UserProgressStore interface
var _ store.UserProgressStore = (*PostgresUserProgressStore)(nil)

// CreateIfAbsent implements store.UserProgressStore.CreateIfAbsent
func (s *PostgresUserProgressStore) CreateIfAbsent(ctx context.Context, p *domain.UserProgress) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := p.Validate(); err != nil {
		log.Warn("user progress validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", p.UserID.String()))
		return false, err
	}

	query := `
		INSERT INTO user_progress (` + progressColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO NOTHING
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		p.UserID,
		p.Points,
		p.StreakDays,
		nullDate(p.LastActive),
		p.DailyGoal,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create user progress",
			slog.String("error", err.Error()),
			slog.String("user_id", p.UserID.String()))
		return false, MapError(err)
	}

	created, err := rowsInserted(result)
	if err != nil {
		return false, err
	}
	if created {
		log.Info("user progress created", slog.String("user_id", p.UserID.String()))
	}
	return created, nil
}

// Get implements store.UserProgressStore.Get
func (s *PostgresUserProgressStore) Get(ctx context.Context, userID uuid.UUID) (*domain.UserProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM user_progress WHERE user_id = $1`
	return s.get(ctx, query, userID)
}

// GetForUpdate implements store.UserProgressStore.GetForUpdate
func (s *PostgresUserProgressStore) GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.UserProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM user_progress WHERE user_id = $1 FOR UPDATE`
	return s.get(ctx, query, userID)
}

func (s *PostgresUserProgressStore) get(ctx context.Context, query string, userID uuid.UUID) (*domain.UserProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var p domain.UserProgress
	var lastActive sql.NullTime
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID,
		&p.Points,
		&p.StreakDays,
		&lastActive,
		&p.DailyGoal,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user progress not found", slog.String("user_id", userID.String()))
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user progress",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	if lastActive.Valid {
		p.LastActive = domain.CalendarDay(lastActive.Time)
	}
	return &p, nil
}

// Update implements store.UserProgressStore.Update
func (s *PostgresUserProgressStore) Update(ctx context.Context, p *domain.UserProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := p.Validate(); err != nil {
		log.Warn("user progress validation failed during update",
			slog.String("error", err.Error()),
			slog.String("user_id", p.UserID.String()))
		return err
	}

	query := `
		UPDATE user_progress
		SET points = $2, streak_days = $3, last_active = $4, daily_goal = $5, updated_at = $6
		WHERE user_id = $1
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		p.UserID,
		p.Points,
		p.StreakDays,
		nullDate(p.LastActive),
		p.DailyGoal,
		p.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update user progress",
			slog.String("error", err.Error()),
			slog.String("user_id", p.UserID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}

	log.Debug("user progress updated",
		slog.String("user_id", p.UserID.String()),
		slog.Int("points", p.Points),
		slog.Int("streak_days", p.StreakDays))
	return nil
}

// WithTx implements store.UserProgressStore.WithTx
func (s *PostgresUserProgressStore) WithTx(tx *sql.Tx) store.UserProgressStore {
	if tx == nil {
		return s
	}
	return &PostgresUserProgressStore{
		db:     tx,
		logger: s.logger,
	}
}

// nullDate converts a zero time into SQL NULL and anything else into its
// calendar date.
func nullDate(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: domain.CalendarDay(t), Valid: true}
}

// nullTime converts a zero time into SQL NULL.
func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
