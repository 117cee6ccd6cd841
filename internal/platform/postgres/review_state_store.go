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

const reviewStateColumns = `user_id, card_id, ease_factor, interval_days, review_count,
	last_reviewed_at, next_review, created_at, updated_at`

// PostgresCardReviewStateStore implements the store.CardReviewStateStore
// interface using a PostgreSQL database as the storage backend.
type PostgresCardReviewStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardReviewStateStore creates a new PostgreSQL implementation of the CardReviewStateStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresCardReviewStateStore(db store.DBTX, logger *slog.Logger) *PostgresCardReviewStateStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardReviewStateStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_review_state_store")),
	}
}

// Ensure PostgresCardReviewStateStore implements store.CardReviewStateStore interface
var _ store.CardReviewStateStore = (*PostgresCardReviewStateStore)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReviewState(row rowScanner) (*domain.CardReviewState, error) {
	var s domain.CardReviewState
	var lastReviewed sql.NullTime
	if err := row.Scan(
		&s.UserID,
		&s.CardID,
		&s.EaseFactor,
		&s.Interval,
		&s.ReviewCount,
		&lastReviewed,
		&s.NextReview,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if lastReviewed.Valid {
		s.LastReviewedAt = lastReviewed.Time.UTC()
	}
	s.NextReview = s.NextReview.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return &s, nil
}

// Lookup implements store.CardReviewStateStore.Lookup
func (s *PostgresCardReviewStateStore) Lookup(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.CardReviewState, bool, error) {
	query := `SELECT ` + reviewStateColumns + ` FROM card_review_states WHERE user_id = $1 AND card_id = $2`
	return s.lookup(ctx, query, userID, cardID)
}

// LookupForUpdate implements store.CardReviewStateStore.LookupForUpdate
func (s *PostgresCardReviewStateStore) LookupForUpdate(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.CardReviewState, bool, error) {
	query := `SELECT ` + reviewStateColumns + ` FROM card_review_states
		WHERE user_id = $1 AND card_id = $2 FOR UPDATE`
	return s.lookup(ctx, query, userID, cardID)
}

func (s *PostgresCardReviewStateStore) lookup(
	ctx context.Context,
	query string,
	userID, cardID uuid.UUID,
) (*domain.CardReviewState, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	state, err := scanReviewState(s.db.QueryRowContext(ctx, query, userID, cardID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		log.Error("failed to look up card review state",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return nil, false, MapError(err)
	}
	return state, true, nil
}

// Upsert implements store.CardReviewStateStore.Upsert
func (s *PostgresCardReviewStateStore) Upsert(ctx context.Context, state *domain.CardReviewState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		log.Warn("card review state validation failed",
			slog.String("error", err.Error()),
			slog.String("user_id", state.UserID.String()),
			slog.String("card_id", state.CardID.String()))
		return err
	}

	query := `
		INSERT INTO card_review_states (` + reviewStateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, card_id) DO UPDATE SET
			ease_factor = EXCLUDED.ease_factor,
			interval_days = EXCLUDED.interval_days,
			review_count = EXCLUDED.review_count,
			last_reviewed_at = EXCLUDED.last_reviewed_at,
			next_review = EXCLUDED.next_review,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		state.UserID,
		state.CardID,
		state.EaseFactor,
		state.Interval,
		state.ReviewCount,
		nullTime(state.LastReviewedAt),
		state.NextReview,
		state.CreatedAt,
		state.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to upsert card review state",
			slog.String("error", err.Error()),
			slog.String("user_id", state.UserID.String()),
			slog.String("card_id", state.CardID.String()))
		return MapError(err)
	}

	log.Debug("card review state saved",
		slog.String("card_id", state.CardID.String()),
		slog.Int("interval", state.Interval),
		slog.Float64("ease_factor", state.EaseFactor),
		slog.Time("next_review", state.NextReview))
	return nil
}

// ListDue implements store.CardReviewStateStore.ListDue
func (s *PostgresCardReviewStateStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	asOf time.Time,
	limit int,
) ([]*domain.CardReviewState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		return []*domain.CardReviewState{}, nil
	}

	query := `
		SELECT ` + reviewStateColumns + `
		FROM card_review_states
		WHERE user_id = $1 AND next_review <= $2
		ORDER BY next_review ASC, card_id ASC
		LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, query, userID, asOf, limit)
	if err != nil {
		log.Error("failed to list due card review states",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	states := make([]*domain.CardReviewState, 0, limit)
	for rows.Next() {
		state, err := scanReviewState(rows)
		if err != nil {
			return nil, MapError(err)
		}
		states = append(states, state)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return states, nil
}

// WithTx implements store.CardReviewStateStore.WithTx
func (s *PostgresCardReviewStateStore) WithTx(tx *sql.Tx) store.CardReviewStateStore {
	if tx == nil {
		return s
	}
	return &PostgresCardReviewStateStore{
		db:     tx,
		logger: s.logger,
	}
}
