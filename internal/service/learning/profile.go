package learning

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/domain"
)

// Profile summarizes a learner's progress.
type Profile struct {
	UserID       uuid.UUID                     `json:"user_id"`
	Points       int                           `json:"points"`
	StreakDays   int                           `json:"streak_days"`
	DailyGoal    int                           `json:"daily_goal"`
	LastActive   *time.Time                    `json:"last_active,omitempty"`
	Achievements []*domain.UnlockedAchievement `json:"achievements"`
}

// GetProfile returns the learner's ledger together with the achievements
// unlocked so far, oldest first.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (profile *Profile, err error) {
	ctx, span := s.startSpan(ctx, "GetProfile", userID)
	defer func() { endSpan(span, err) }()

	if userID == uuid.Nil {
		return nil, ErrLearnerRequired
	}

	p, err := s.deps.Progress.Get(ctx, userID)
	if err != nil {
		return nil, classify("get_profile", "failed to load ledger", err)
	}
	return s.buildProfile(ctx, nil, p)
}

// RegisterLearner creates the learner's ledger unless it exists and unlocks
// the achievements available from the start. It is safe to call repeatedly.
func (s *Service) RegisterLearner(ctx context.Context, userID uuid.UUID) (profile *Profile, err error) {
	ctx, span := s.startSpan(ctx, "RegisterLearner", userID)
	defer func() { endSpan(span, err) }()

	if userID == uuid.Nil {
		return nil, ErrLearnerRequired
	}

	now := s.now().UTC()
	err = s.runSubmission(ctx, func(ctx context.Context, tx *sql.Tx) error {
		p, _, err := s.deps.Ledger.RegisterLearner(ctx, tx, userID, now)
		if err != nil {
			return err
		}
		profile, err = s.buildProfile(ctx, tx, p)
		return err
	})
	if err != nil {
		return nil, classify("register_learner", "failed to register learner", err)
	}
	return profile, nil
}

// SetDailyGoal changes how many cards the learner's review session holds.
func (s *Service) SetDailyGoal(ctx context.Context, userID uuid.UUID, goal int) (profile *Profile, err error) {
	ctx, span := s.startSpan(ctx, "SetDailyGoal", userID)
	defer func() { endSpan(span, err) }()

	if userID == uuid.Nil {
		return nil, ErrLearnerRequired
	}
	if goal <= 0 {
		return nil, domain.NewValidationError("daily_goal", "must be greater than 0", domain.ErrInvalidDailyGoal)
	}

	now := s.now().UTC()
	err = s.runSubmission(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.deps.Ledger.EnsureLearner(ctx, tx, userID, now); err != nil {
			return err
		}
		p, err := s.deps.Ledger.SetDailyGoal(ctx, tx, userID, goal, now)
		if err != nil {
			return err
		}
		profile, err = s.buildProfile(ctx, tx, p)
		return err
	})
	if err != nil {
		return nil, classify("set_daily_goal", "failed to update daily goal", err)
	}
	return profile, nil
}

func (s *Service) buildProfile(ctx context.Context, tx *sql.Tx, p *domain.UserProgress) (*Profile, error) {
	if p == nil {
		return nil, errors.New("nil ledger")
	}

	unlocked, err := s.deps.Achievements.WithTx(tx).ListUnlocked(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		UserID:       p.UserID,
		Points:       p.Points,
		StreakDays:   p.StreakDays,
		DailyGoal:    p.DailyGoal,
		Achievements: unlocked,
	}
	if p.HasActivity() {
		lastActive := p.LastActive
		profile.LastActive = &lastActive
	}
	return profile, nil
}
