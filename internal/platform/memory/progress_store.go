package memory

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/domain"
	"github.com/phrazzld/sprachweg/internal/store"
)

// UserProgressStore implements store.UserProgressStore in memory.
type UserProgressStore struct {
	db *DB
}

// NewUserProgressStore creates a UserProgressStore backed by db.
func NewUserProgressStore(db *DB) *UserProgressStore {
	return &UserProgressStore{db: db}
}

// Ensure UserProgressStore implements store.UserProgressStore interface
var _ store.UserProgressStore = (*UserProgressStore)(nil)

// CreateIfAbsent implements store.UserProgressStore.CreateIfAbsent
func (s *UserProgressStore) CreateIfAbsent(ctx context.Context, p *domain.UserProgress) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}

	created := false
	s.db.write(ctx, func(t *tables) {
		if _, ok := t.progress[p.UserID]; ok {
			return
		}
		t.progress[p.UserID] = *p
		created = true
	})
	return created, nil
}

// Get implements store.UserProgressStore.Get
func (s *UserProgressStore) Get(ctx context.Context, userID uuid.UUID) (*domain.UserProgress, error) {
	var (
		p  domain.UserProgress
		ok bool
	)
	s.db.read(ctx, func(t *tables) {
		p, ok = t.progress[userID]
	})
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &p, nil
}

// GetForUpdate implements store.UserProgressStore.GetForUpdate.
// Transactions are already serialized, so this is a plain read.
func (s *UserProgressStore) GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.UserProgress, error) {
	return s.Get(ctx, userID)
}

// Update implements store.UserProgressStore.Update
func (s *UserProgressStore) Update(ctx context.Context, p *domain.UserProgress) error {
	if err := p.Validate(); err != nil {
		return err
	}

	var err error
	s.db.write(ctx, func(t *tables) {
		if _, ok := t.progress[p.UserID]; !ok {
			err = store.ErrUserNotFound
			return
		}
		t.progress[p.UserID] = *p
	})
	return err
}

// WithTx implements store.UserProgressStore.WithTx
func (s *UserProgressStore) WithTx(*sql.Tx) store.UserProgressStore {
	return s
}
