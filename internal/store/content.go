package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/domain"
)

// ContentStore is the read-only view of lessons and flashcards owned by the
// content authoring side.
type ContentStore interface {
	// GetLesson returns a lesson with its exercises in order.
	// Returns ErrLessonNotFound if the lesson does not exist.
	GetLesson(ctx context.Context, lessonID uuid.UUID) (*domain.Lesson, error)

	// GetCard returns a flashcard.
	// Returns ErrCardNotFound if the card does not exist.
	GetCard(ctx context.Context, cardID uuid.UUID) (*domain.Card, error)

	// ListUnreviewedCardIDs returns up to limit cards the user has no review
	// state for, in content order. A non-positive limit returns no entries.
	ListUnreviewedCardIDs(ctx context.Context, userID uuid.UUID, limit int) ([]uuid.UUID, error)
}
