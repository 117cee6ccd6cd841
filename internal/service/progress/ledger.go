package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/config"
	"github.com/phrazzld/sprachweg/internal/domain"
	"github.com/phrazzld/sprachweg/internal/events"
	"github.com/phrazzld/sprachweg/internal/platform/logger"
	"github.com/phrazzld/sprachweg/internal/store"
)

// Ledger maintains learner points and streaks.
//
// Every method takes the transaction of the calling operation; tx is nil for
// backends without SQL transactions.
type Ledger struct {
	progress      store.UserProgressStore
	engine        *AchievementEngine
	pointsDivisor int
	dailyGoal     int
	location      *time.Location
	logger        *slog.Logger
}

// Ensure Ledger implements events.Handler interface
var _ events.Handler = (*Ledger)(nil)

// NewLedger creates a Ledger. Activity days are taken in cfg's time zone.
func NewLedger(
	progress store.UserProgressStore,
	engine *AchievementEngine,
	cfg config.ProgressConfig,
	logger *slog.Logger,
) (*Ledger, error) {
	if progress == nil {
		panic("progress cannot be nil")
	}
	if engine == nil {
		panic("engine cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.PointsDivisor <= 0 {
		return nil, fmt.Errorf("points divisor must be positive, got %d", cfg.PointsDivisor)
	}
	goal := cfg.DefaultDailyGoal
	if goal <= 0 {
		goal = domain.DefaultDailyGoal
	}
	loc := time.UTC
	if cfg.TimeZone != "" {
		var err error
		if loc, err = cfg.Location(); err != nil {
			return nil, err
		}
	}

	return &Ledger{
		progress:      progress,
		engine:        engine,
		pointsDivisor: cfg.PointsDivisor,
		dailyGoal:     goal,
		location:      loc,
		logger:        logger.With(slog.String("component", "progress_ledger")),
	}, nil
}

// ActivityDay returns the calendar day an activity at t counts for.
func (l *Ledger) ActivityDay(t time.Time) time.Time {
	return domain.DayIn(t, l.location)
}

// DefaultDailyGoal is the daily goal new ledgers start with.
func (l *Ledger) DefaultDailyGoal() int {
	return l.dailyGoal
}

// PointsForScore returns the points a first completion with score earns.
func (l *Ledger) PointsForScore(score int) int {
	if score <= 0 {
		return 0
	}
	return score / l.pointsDivisor
}

// EnsureLearner creates the learner's ledger with default values unless it
// already exists. It reports whether a ledger was created.
func (l *Ledger) EnsureLearner(ctx context.Context, tx *sql.Tx, userID uuid.UUID, now time.Time) (bool, error) {
	p, err := domain.NewUserProgress(userID, now)
	if err != nil {
		return false, err
	}
	p.DailyGoal = l.dailyGoal

	created, err := l.progress.WithTx(tx).CreateIfAbsent(ctx, p)
	if err != nil {
		return false, fmt.Errorf("failed to create learner ledger: %w", err)
	}
	if created {
		logger.FromContextOrDefault(ctx, l.logger).Info("learner registered",
			slog.String("user_id", userID.String()))
	}
	return created, nil
}

// Lock reads the learner's ledger and holds it for the rest of the
// transaction, serializing all submissions of the learner.
func (l *Ledger) Lock(ctx context.Context, tx *sql.Tx, userID uuid.UUID) (*domain.UserProgress, error) {
	return l.progress.WithTx(tx).GetForUpdate(ctx, userID)
}

// RegisterLearner creates the learner's ledger if absent and unlocks the
// achievements available at its current points, such as the welcome
// achievement.
func (l *Ledger) RegisterLearner(
	ctx context.Context,
	tx *sql.Tx,
	userID uuid.UUID,
	now time.Time,
) (*domain.UserProgress, []*domain.Achievement, error) {
	if _, err := l.EnsureLearner(ctx, tx, userID, now); err != nil {
		return nil, nil, err
	}
	p, err := l.Lock(ctx, tx, userID)
	if err != nil {
		return nil, nil, err
	}
	unlocked, err := l.engine.Check(ctx, tx, userID, p.Points, now)
	if err != nil {
		return nil, nil, err
	}
	return p, unlocked, nil
}

// AddPoints adds a non-negative delta to the learner's points and then runs
// an achievement check. It returns the achievements unlocked by the check.
func (l *Ledger) AddPoints(
	ctx context.Context,
	tx *sql.Tx,
	userID uuid.UUID,
	delta int,
	at time.Time,
) ([]*domain.Achievement, error) {
	if delta < 0 {
		return nil, domain.NewValidationError("delta", "must not be negative", domain.ErrNegativePoints)
	}

	p, err := l.update(ctx, tx, userID, at, func(p *domain.UserProgress) (bool, error) {
		if err := p.AddPoints(delta); err != nil {
			return false, err
		}
		return delta > 0, nil
	})
	if err != nil {
		return nil, err
	}

	return l.engine.Check(ctx, tx, userID, p.Points, at)
}

// TouchActivity records learner activity at the given time and advances the
// streak. The day is taken in the ledger's time zone.
func (l *Ledger) TouchActivity(
	ctx context.Context,
	tx *sql.Tx,
	userID uuid.UUID,
	at time.Time,
) (*domain.UserProgress, error) {
	day := l.ActivityDay(at)
	return l.update(ctx, tx, userID, at, func(p *domain.UserProgress) (bool, error) {
		return p.TouchActivity(day), nil
	})
}

// SetDailyGoal changes how many cards the learner's review session holds.
func (l *Ledger) SetDailyGoal(
	ctx context.Context,
	tx *sql.Tx,
	userID uuid.UUID,
	goal int,
	now time.Time,
) (*domain.UserProgress, error) {
	if goal <= 0 {
		return nil, domain.NewValidationError("daily_goal", "must be greater than 0", domain.ErrInvalidDailyGoal)
	}
	return l.update(ctx, tx, userID, now, func(p *domain.UserProgress) (bool, error) {
		if p.DailyGoal == goal {
			return false, nil
		}
		return true, p.SetDailyGoal(goal)
	})
}

// HandleEvent implements events.Handler.
//
// A lesson completion awards points for the first completion of the lesson
// only; every completion and every review counts as activity for the streak.
func (l *Ledger) HandleEvent(ctx context.Context, tx *sql.Tx, event events.Event) error {
	log := logger.FromContextOrDefault(ctx, l.logger)

	switch e := event.(type) {
	case *events.CompletionEvent:
		awarded := 0
		if e.FirstCompletion && e.Completed {
			awarded = l.PointsForScore(e.Score)
		}
		day := l.ActivityDay(e.OccurredAt)

		p, err := l.update(ctx, tx, e.UserID, e.OccurredAt, func(p *domain.UserProgress) (bool, error) {
			if err := p.AddPoints(awarded); err != nil {
				return false, err
			}
			touched := p.TouchActivity(day)
			return touched || awarded > 0, nil
		})
		if err != nil {
			return err
		}

		log.Debug("lesson completion recorded",
			slog.String("user_id", e.UserID.String()),
			slog.String("lesson_id", e.LessonID.String()),
			slog.Int("points_awarded", awarded),
			slog.Int("streak_days", p.StreakDays))

		if awarded > 0 {
			if _, err := l.engine.Check(ctx, tx, e.UserID, p.Points, e.OccurredAt); err != nil {
				return err
			}
		}
		return nil

	case *events.ReviewEvent:
		_, err := l.TouchActivity(ctx, tx, e.UserID, e.OccurredAt)
		return err

	default:
		log.Debug("ignoring event",
			slog.String("event_type", event.EventType()),
			slog.String("event_id", event.EventID().String()))
		return nil
	}
}

// update applies fn to the locked ledger and stores it when fn reports a
// change. The stored ledger is returned either way.
func (l *Ledger) update(
	ctx context.Context,
	tx *sql.Tx,
	userID uuid.UUID,
	now time.Time,
	fn func(p *domain.UserProgress) (bool, error),
) (*domain.UserProgress, error) {
	progress := l.progress.WithTx(tx)

	p, err := progress.GetForUpdate(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load learner ledger: %w", err)
	}

	changed, err := fn(p)
	if err != nil {
		return nil, err
	}
	if !changed {
		return p, nil
	}

	p.UpdatedAt = now.UTC()
	if err := progress.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update learner ledger: %w", err)
	}
	return p, nil
}
