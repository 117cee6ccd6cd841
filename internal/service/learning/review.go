package learning

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/domain"
	"github.com/phrazzld/sprachweg/internal/domain/srs"
	"github.com/phrazzld/sprachweg/internal/events"
	"github.com/phrazzld/sprachweg/internal/platform/logger"
	"github.com/phrazzld/sprachweg/internal/store"
)

// ReviewResult is the schedule of a card after a review.
type ReviewResult struct {
	CardID      uuid.UUID `json:"card_id"`
	NextReview  time.Time `json:"next_review"`
	Interval    int       `json:"interval"`
	EaseFactor  float64   `json:"ease_factor"`
	ReviewCount int       `json:"review_count"`
}

// SubmitReview records how well the learner recalled a card and reschedules
// it. quality is on the 0..5 recall scale.
func (s *Service) SubmitReview(
	ctx context.Context,
	userID, cardID uuid.UUID,
	quality int,
) (result *ReviewResult, err error) {
	ctx, span := s.startSpan(ctx, "SubmitReview", userID)
	defer func() { endSpan(span, err) }()

	log := logger.FromContextOrDefault(ctx, s.logger)

	if userID == uuid.Nil {
		return nil, ErrLearnerRequired
	}
	q := domain.RecallQuality(quality)
	if !q.Valid() {
		return nil, domain.NewValidationError("quality", "must be between 0 and 5", domain.ErrInvalidRecallQuality)
	}

	if _, err := s.deps.Content.GetCard(ctx, cardID); err != nil {
		return nil, classify("submit_review", "failed to load card", err)
	}

	now := s.now().UTC()
	err = s.runSubmission(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.lockLearner(ctx, tx, userID, now); err != nil {
			return err
		}

		states := s.deps.ReviewStates.WithTx(tx)
		prior, found, err := states.LookupForUpdate(ctx, userID, cardID)
		if err != nil {
			return err
		}
		if !found {
			prior = nil
		}

		next, err := s.deps.Scheduler.CalculateNextReview(userID, cardID, prior, q, now)
		if err != nil {
			return err
		}
		if err := states.Upsert(ctx, next); err != nil {
			return err
		}

		result = &ReviewResult{
			CardID:      cardID,
			NextReview:  next.NextReview,
			Interval:    next.Interval,
			EaseFactor:  next.EaseFactor,
			ReviewCount: next.ReviewCount,
		}
		return s.deps.Emitter.Emit(ctx, tx, events.NewReviewEvent(userID, cardID, quality, now))
	})
	if err != nil {
		log.Error("failed to record review",
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()),
			slog.String("error", err.Error()))
		return nil, classify("submit_review", "failed to record review", err)
	}

	log.Info("card reviewed",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()),
		slog.Int("quality", quality),
		slog.Int("interval", result.Interval),
		slog.Float64("ease_factor", result.EaseFactor))
	return result, nil
}

// GetDueCards returns the learner's review queue at asOf: due cards, most
// overdue first, followed by cards never reviewed in content order. A
// non-positive limit uses the learner's daily goal.
func (s *Service) GetDueCards(
	ctx context.Context,
	userID uuid.UUID,
	asOf time.Time,
	limit int,
) (ids []uuid.UUID, err error) {
	ctx, span := s.startSpan(ctx, "GetDueCards", userID)
	defer func() { endSpan(span, err) }()

	if userID == uuid.Nil {
		return nil, ErrLearnerRequired
	}
	if asOf.IsZero() {
		asOf = s.now()
	}

	if limit <= 0 {
		p, err := s.deps.Progress.Get(ctx, userID)
		switch {
		case err == nil:
			limit = p.DailyGoal
		case store.IsNotFoundError(err):
			limit = s.deps.Ledger.DefaultDailyGoal()
		default:
			return nil, classify("get_due_cards", "failed to load daily goal", err)
		}
	}

	due, err := s.deps.ReviewStates.ListDue(ctx, userID, asOf, limit)
	if err != nil {
		return nil, classify("get_due_cards", "failed to list due cards", err)
	}
	unreviewed := []uuid.UUID{}
	if len(due) < limit {
		unreviewed, err = s.deps.Content.ListUnreviewedCardIDs(ctx, userID, limit-len(due))
		if err != nil {
			return nil, classify("get_due_cards", "failed to list new cards", err)
		}
	}

	ids = srs.SelectDue(due, unreviewed, asOf, limit)
	logger.FromContextOrDefault(ctx, s.logger).Debug("review queue built",
		slog.String("user_id", userID.String()),
		slog.Int("due", len(due)),
		slog.Int("queue", len(ids)))
	return ids, nil
}
