package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/domain"
	"github.com/phrazzld/sprachweg/internal/store"
)

// ContentStore implements store.ContentStore over the content added to a DB.
type ContentStore struct {
	db *DB
}

// NewContentStore creates a ContentStore backed by db.
func NewContentStore(db *DB) *ContentStore {
	return &ContentStore{db: db}
}

// Ensure ContentStore implements store.ContentStore interface
var _ store.ContentStore = (*ContentStore)(nil)

// GetLesson implements store.ContentStore.GetLesson
func (s *ContentStore) GetLesson(_ context.Context, lessonID uuid.UUID) (*domain.Lesson, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	lesson, ok := s.db.lessons[lessonID]
	if !ok {
		return nil, store.ErrLessonNotFound
	}
	lesson.Exercises = append([]domain.Exercise(nil), lesson.Exercises...)
	return &lesson, nil
}

// GetCard implements store.ContentStore.GetCard
func (s *ContentStore) GetCard(_ context.Context, cardID uuid.UUID) (*domain.Card, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	card, ok := s.db.cards[cardID]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return &card, nil
}

// ListUnreviewedCardIDs implements store.ContentStore.ListUnreviewedCardIDs
func (s *ContentStore) ListUnreviewedCardIDs(ctx context.Context, userID uuid.UUID, limit int) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	if limit <= 0 {
		return ids, nil
	}

	s.db.mu.RLock()
	var order []uuid.UUID
	for _, d := range s.db.decks {
		order = append(order, d.cards...)
	}
	s.db.mu.RUnlock()

	s.db.read(ctx, func(t *tables) {
		for _, cardID := range order {
			if _, reviewed := t.states[pairKey{userID, cardID}]; reviewed {
				continue
			}
			ids = append(ids, cardID)
			if len(ids) == limit {
				return
			}
		}
	})
	return ids, nil
}
