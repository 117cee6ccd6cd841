package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/domain"
)

// CardReviewStateStore defines the interface for per-card spaced repetition state.
type CardReviewStateStore interface {
	// Lookup retrieves the state of a card for a user. found is false when
	// the user has never reviewed the card; that is not an error.
	Lookup(ctx context.Context, userID, cardID uuid.UUID) (state *domain.CardReviewState, found bool, err error)

	// LookupForUpdate is Lookup with a row-level lock using SELECT FOR UPDATE.
	LookupForUpdate(ctx context.Context, userID, cardID uuid.UUID) (state *domain.CardReviewState, found bool, err error)

	// Upsert inserts the state or replaces the existing one for (user, card).
	// Returns validation errors from the domain CardReviewState if data is invalid.
	Upsert(ctx context.Context, state *domain.CardReviewState) error

	// ListDue returns the user's states with next_review <= asOf, ordered by
	// next_review ascending, at most limit entries. A non-positive limit
	// returns no entries.
	ListDue(ctx context.Context, userID uuid.UUID, asOf time.Time, limit int) ([]*domain.CardReviewState, error)

	// WithTx returns a new CardReviewStateStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CardReviewStateStore
}
