package memory

import (
	"context"
	"database/sql"
	"fmt"
	"maps"

	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/domain"
	"github.com/phrazzld/sprachweg/internal/store"
)

// QuizAttemptStore implements store.QuizAttemptStore in memory.
type QuizAttemptStore struct {
	db *DB
}

// NewQuizAttemptStore creates a QuizAttemptStore backed by db.
func NewQuizAttemptStore(db *DB) *QuizAttemptStore {
	return &QuizAttemptStore{db: db}
}

// Ensure QuizAttemptStore implements store.QuizAttemptStore interface
var _ store.QuizAttemptStore = (*QuizAttemptStore)(nil)

// Upsert implements store.QuizAttemptStore.Upsert
func (s *QuizAttemptStore) Upsert(ctx context.Context, a *domain.QuizAttempt) (bool, error) {
	if err := a.Validate(); err != nil {
		return false, err
	}

	stored := *a
	stored.Answers = maps.Clone(a.Answers)
	if stored.Answers == nil {
		stored.Answers = map[string]string{}
	}

	var (
		created bool
		err     error
	)
	s.db.write(ctx, func(t *tables) {
		if _, ok := t.progress[a.UserID]; !ok {
			err = fmt.Errorf("%w: no ledger for user %s", store.ErrInvalidEntity, a.UserID)
			return
		}
		key := pairKey{a.UserID, a.LessonID}
		if existing, ok := t.attempts[key]; ok {
			stored.CreatedAt = existing.CreatedAt
			a.CreatedAt = existing.CreatedAt
		} else {
			created = true
		}
		t.attempts[key] = stored
	})
	return created, err
}

// Get implements store.QuizAttemptStore.Get
func (s *QuizAttemptStore) Get(ctx context.Context, userID, lessonID uuid.UUID) (*domain.QuizAttempt, error) {
	var (
		a  domain.QuizAttempt
		ok bool
	)
	s.db.read(ctx, func(t *tables) {
		a, ok = t.attempts[pairKey{userID, lessonID}]
	})
	if !ok {
		return nil, store.ErrAttemptNotFound
	}
	a.Answers = maps.Clone(a.Answers)
	return &a, nil
}

// WithTx implements store.QuizAttemptStore.WithTx
func (s *QuizAttemptStore) WithTx(*sql.Tx) store.QuizAttemptStore {
	return s
}
