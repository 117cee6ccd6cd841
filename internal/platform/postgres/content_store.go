package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/domain"
	"github.com/phrazzld/sprachweg/internal/platform/logger"
	"github.com/phrazzld/sprachweg/internal/store"
)

// PostgresContentStore implements the read-only store.ContentStore interface
// over the lesson and flashcard tables.
type PostgresContentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresContentStore creates a new PostgreSQL implementation of the ContentStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresContentStore(db store.DBTX, logger *slog.Logger) *PostgresContentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresContentStore{
		db:     db,
		logger: logger.With(slog.String("component", "content_store")),
	}
}

// Ensure PostgresContentStore implements store.ContentStore interface
var _ store.ContentStore = (*PostgresContentStore)(nil)

// GetLesson implements store.ContentStore.GetLesson
func (s *PostgresContentStore) GetLesson(ctx context.Context, lessonID uuid.UUID) (*domain.Lesson, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var lesson domain.Lesson
	err := s.db.QueryRowContext(ctx,
		`SELECT id, slug, title FROM lessons WHERE id = $1`, lessonID,
	).Scan(&lesson.ID, &lesson.Slug, &lesson.Title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("lesson not found", slog.String("lesson_id", lessonID.String()))
			return nil, store.ErrLessonNotFound
		}
		log.Error("failed to get lesson",
			slog.String("error", err.Error()),
			slog.String("lesson_id", lessonID.String()))
		return nil, MapError(err)
	}

	query := `
		SELECT id, type, question, answer, explanation, position
		FROM exercises
		WHERE lesson_id = $1
		ORDER BY position ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, lessonID)
	if err != nil {
		log.Error("failed to list lesson exercises",
			slog.String("error", err.Error()),
			slog.String("lesson_id", lessonID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	lesson.Exercises = []domain.Exercise{}
	for rows.Next() {
		var ex domain.Exercise
		var exType string
		if err := rows.Scan(&ex.ID, &exType, &ex.Question, &ex.Answer, &ex.Explanation, &ex.Order); err != nil {
			return nil, MapError(err)
		}
		ex.Type = domain.ExerciseType(exType)
		lesson.Exercises = append(lesson.Exercises, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return &lesson, nil
}

// GetCard implements store.ContentStore.GetCard
func (s *PostgresContentStore) GetCard(ctx context.Context, cardID uuid.UUID) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var card domain.Card
	err := s.db.QueryRowContext(ctx,
		`SELECT id, deck_id, front, back FROM flashcards WHERE id = $1`, cardID,
	).Scan(&card.ID, &card.DeckID, &card.Front, &card.Back)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found", slog.String("card_id", cardID.String()))
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to get card",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return nil, MapError(err)
	}

	return &card, nil
}

// ListUnreviewedCardIDs implements store.ContentStore.ListUnreviewedCardIDs.
// Cards come in content order: deck position, then card position.
func (s *PostgresContentStore) ListUnreviewedCardIDs(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		return []uuid.UUID{}, nil
	}

	query := `
		SELECT f.id
		FROM flashcards f
		JOIN flashcard_decks d ON d.id = f.deck_id
		WHERE NOT EXISTS (
			SELECT 1 FROM card_review_states s
			WHERE s.user_id = $1 AND s.card_id = f.id
		)
		ORDER BY d.position ASC, d.id ASC, f.position ASC, f.id ASC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		log.Error("failed to list unreviewed cards",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	ids := make([]uuid.UUID, 0, limit)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, MapError(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return ids, nil
}
