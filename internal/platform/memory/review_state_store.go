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

// CardReviewStateStore implements store.CardReviewStateStore in memory.
type CardReviewStateStore struct {
	db *DB
}

// NewCardReviewStateStore creates a CardReviewStateStore backed by db.
func NewCardReviewStateStore(db *DB) *CardReviewStateStore {
	return &CardReviewStateStore{db: db}
}

// Ensure CardReviewStateStore implements store.CardReviewStateStore interface
var _ store.CardReviewStateStore = (*CardReviewStateStore)(nil)

// Lookup implements store.CardReviewStateStore.Lookup
func (s *CardReviewStateStore) Lookup(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.CardReviewState, bool, error) {
	var (
		state domain.CardReviewState
		ok    bool
	)
	s.db.read(ctx, func(t *tables) {
		state, ok = t.states[pairKey{userID, cardID}]
	})
	if !ok {
		return nil, false, nil
	}
	return &state, true, nil
}

// LookupForUpdate implements store.CardReviewStateStore.LookupForUpdate
func (s *CardReviewStateStore) LookupForUpdate(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.CardReviewState, bool, error) {
	return s.Lookup(ctx, userID, cardID)
}

// Upsert implements store.CardReviewStateStore.Upsert
func (s *CardReviewStateStore) Upsert(ctx context.Context, state *domain.CardReviewState) error {
	if err := state.Validate(); err != nil {
		return err
	}

	var err error
	s.db.write(ctx, func(t *tables) {
		if _, ok := t.progress[state.UserID]; !ok {
			err = fmt.Errorf("%w: no ledger for user %s", store.ErrInvalidEntity, state.UserID)
			return
		}
		key := pairKey{state.UserID, state.CardID}
		if existing, ok := t.states[key]; ok {
			state.CreatedAt = existing.CreatedAt
		}
		t.states[key] = *state
	})
	return err
}

// ListDue implements store.CardReviewStateStore.ListDue
func (s *CardReviewStateStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	asOf time.Time,
	limit int,
) ([]*domain.CardReviewState, error) {
	due := []*domain.CardReviewState{}
	if limit <= 0 {
		return due, nil
	}

	s.db.read(ctx, func(t *tables) {
		for key, state := range t.states {
			if key.userID != userID || !state.IsDue(asOf) {
				continue
			}
			due = append(due, &state)
		}
	})

	sort.Slice(due, func(i, j int) bool {
		if !due[i].NextReview.Equal(due[j].NextReview) {
			return due[i].NextReview.Before(due[j].NextReview)
		}
		return due[i].CardID.String() < due[j].CardID.String()
	})

	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

// WithTx implements store.CardReviewStateStore.WithTx
func (s *CardReviewStateStore) WithTx(*sql.Tx) store.CardReviewStateStore {
	return s
}
