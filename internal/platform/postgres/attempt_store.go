package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/domain"
	"github.com/phrazzld/sprachweg/internal/platform/logger"
	"github.com/phrazzld/sprachweg/internal/store"
)

// PostgresQuizAttemptStore implements the store.QuizAttemptStore interface
// using a PostgreSQL database as the storage backend.
type PostgresQuizAttemptStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresQuizAttemptStore creates a new PostgreSQL implementation of the QuizAttemptStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresQuizAttemptStore(db store.DBTX, logger *slog.Logger) *PostgresQuizAttemptStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresQuizAttemptStore{
		db:     db,
		logger: logger.With(slog.String("component", "quiz_attempt_store")),
	}
}

// Ensure PostgresQuizAttemptStore implements store.QuizAttemptStore interface
var _ store.QuizAttemptStore = (*PostgresQuizAttemptStore)(nil)

// Upsert implements store.QuizAttemptStore.Upsert.
// The stored row keeps its original created_at; created reports whether the
// row did not exist before.
func (s *PostgresQuizAttemptStore) Upsert(ctx context.Context, a *domain.QuizAttempt) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := a.Validate(); err != nil {
		log.Warn("quiz attempt validation failed",
			slog.String("error", err.Error()),
			slog.String("user_id", a.UserID.String()),
			slog.String("lesson_id", a.LessonID.String()))
		return false, err
	}

	answers := a.Answers
	if answers == nil {
		answers = map[string]string{}
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return false, fmt.Errorf("failed to encode quiz answers: %w", err)
	}

	query := `
		INSERT INTO quiz_attempts (user_id, lesson_id, score, completed, answers, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, lesson_id) DO UPDATE SET
			score = EXCLUDED.score,
			completed = EXCLUDED.completed,
			answers = EXCLUDED.answers,
			updated_at = EXCLUDED.updated_at
		RETURNING (xmax = 0) AS inserted, created_at
	`
	var created bool
	err = s.db.QueryRowContext(
		ctx,
		query,
		a.UserID,
		a.LessonID,
		a.Score,
		a.Completed,
		answersJSON,
		a.CreatedAt,
		a.UpdatedAt,
	).Scan(&created, &a.CreatedAt)
	if err != nil {
		log.Error("failed to upsert quiz attempt",
			slog.String("error", err.Error()),
			slog.String("user_id", a.UserID.String()),
			slog.String("lesson_id", a.LessonID.String()))
		return false, MapError(err)
	}
	a.CreatedAt = a.CreatedAt.UTC()

	log.Debug("quiz attempt saved",
		slog.String("lesson_id", a.LessonID.String()),
		slog.Int("score", a.Score),
		slog.Bool("first_completion", created))
	return created, nil
}

// Get implements store.QuizAttemptStore.Get
func (s *PostgresQuizAttemptStore) Get(ctx context.Context, userID, lessonID uuid.UUID) (*domain.QuizAttempt, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id, lesson_id, score, completed, answers, created_at, updated_at
		FROM quiz_attempts
		WHERE user_id = $1 AND lesson_id = $2
	`
	var a domain.QuizAttempt
	var answersJSON []byte
	err := s.db.QueryRowContext(ctx, query, userID, lessonID).Scan(
		&a.UserID,
		&a.LessonID,
		&a.Score,
		&a.Completed,
		&answersJSON,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAttemptNotFound
		}
		log.Error("failed to get quiz attempt",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("lesson_id", lessonID.String()))
		return nil, MapError(err)
	}

	a.Answers = map[string]string{}
	if len(answersJSON) > 0 {
		if err := json.Unmarshal(answersJSON, &a.Answers); err != nil {
			return nil, fmt.Errorf("failed to decode quiz answers: %w", err)
		}
	}
	return &a, nil
}

// WithTx implements store.QuizAttemptStore.WithTx
func (s *PostgresQuizAttemptStore) WithTx(tx *sql.Tx) store.QuizAttemptStore {
	if tx == nil {
		return s
	}
	return &PostgresQuizAttemptStore{
		db:     tx,
		logger: s.logger,
	}
}
