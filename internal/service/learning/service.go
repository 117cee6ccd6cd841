package learning

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/domain"
	"github.com/phrazzld/sprachweg/internal/domain/srs"
	"github.com/phrazzld/sprachweg/internal/events"
	"github.com/phrazzld/sprachweg/internal/platform/logger"
	"github.com/phrazzld/sprachweg/internal/service/progress"
	"github.com/phrazzld/sprachweg/internal/store"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/phrazzld/sprachweg/internal/service/learning"

// DefaultRetryDelay is the pause before a conflicting submission is retried.
const DefaultRetryDelay = 20 * time.Millisecond

// Dependencies are the collaborators of a Service.
type Dependencies struct {
	Tx           store.TxManager
	Content      store.ContentStore
	Progress     store.UserProgressStore
	ReviewStates store.CardReviewStateStore
	Attempts     store.QuizAttemptStore
	Achievements store.AchievementStore
	Ledger       *progress.Ledger
	Scheduler    srs.Service
	Emitter      events.Emitter
}

func (d Dependencies) validate() error {
	switch {
	case d.Tx == nil:
		return errors.New("transaction manager cannot be nil")
	case d.Content == nil:
		return errors.New("content store cannot be nil")
	case d.Progress == nil:
		return errors.New("progress store cannot be nil")
	case d.ReviewStates == nil:
		return errors.New("review state store cannot be nil")
	case d.Attempts == nil:
		return errors.New("attempt store cannot be nil")
	case d.Achievements == nil:
		return errors.New("achievement store cannot be nil")
	case d.Ledger == nil:
		return errors.New("ledger cannot be nil")
	case d.Scheduler == nil:
		return errors.New("scheduler cannot be nil")
	case d.Emitter == nil:
		return errors.New("emitter cannot be nil")
	}
	return nil
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the time source used to timestamp submissions.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithRetryDelay sets the pause before a conflicting submission is retried.
func WithRetryDelay(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.retryDelay = d
		}
	}
}

// Service implements the learner-facing operations of the engine.
type Service struct {
	deps       Dependencies
	now        func() time.Time
	retryDelay time.Duration
	tracer     trace.Tracer
	logger     *slog.Logger
}

// NewService creates a Service.
func NewService(deps Dependencies, logger *slog.Logger, opts ...Option) (*Service, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		deps:       deps,
		now:        time.Now,
		retryDelay: DefaultRetryDelay,
		tracer:     otel.Tracer(tracerName),
		logger:     logger.With(slog.String("component", "learning_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// startSpan starts a span for an operation of the learner.
func (s *Service) startSpan(ctx context.Context, operation string, userID uuid.UUID) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "learning."+operation,
		trace.WithAttributes(attribute.String("learner.id", userID.String())))
}

// endSpan records err on span and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// runSubmission runs fn in a transaction, retrying once when the transaction
// loses a race with a concurrent one.
func (s *Service) runSubmission(ctx context.Context, fn store.TxFn) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	attempt := 0
	backoff := retry.WithMaxRetries(1, retry.NewConstant(s.retryDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := s.deps.Tx.RunInTransaction(ctx, fn)
		if store.IsConflictError(err) {
			log.Warn("submission conflicted with a concurrent update",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			return retry.RetryableError(err)
		}
		return err
	})

	if store.IsConflictError(err) {
		return fmt.Errorf("%w: %w", ErrConcurrencyConflict, err)
	}
	return err
}

// classify passes expected errors through and wraps everything else in a
// ServiceError for operation.
func classify(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, ErrConcurrencyConflict),
		errors.Is(err, ErrLearnerRequired),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return NewServiceError(operation, message, err)
}

// lockLearner creates the learner's ledger if needed and locks it for the
// rest of the transaction.
func (s *Service) lockLearner(
	ctx context.Context,
	tx *sql.Tx,
	userID uuid.UUID,
	now time.Time,
) (*domain.UserProgress, error) {
	if _, err := s.deps.Ledger.EnsureLearner(ctx, tx, userID, now); err != nil {
		return nil, err
	}
	return s.deps.Ledger.Lock(ctx, tx, userID)
}
