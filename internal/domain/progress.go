package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultDailyGoal is the number of cards in a review session for new learners.
const DefaultDailyGoal = 5

// Validation errors for UserProgress
var (
	ErrEmptyProgressUserID = errors.New("user progress user ID cannot be empty")
	ErrNegativeStreak      = errors.New("streak days cannot be negative")
	ErrNegativeTotal       = errors.New("points cannot be negative")
)

// UserProgress is a learner's ledger: accumulated points, the current daily
// streak and the last calendar day with recorded activity.
type UserProgress struct {
	UserID     uuid.UUID `json:"user_id"`
	Points     int       `json:"points"`
	StreakDays int       `json:"streak_days"`
	LastActive time.Time `json:"last_active"` // Zero until the first activity; always UTC midnight
	DailyGoal  int       `json:"daily_goal"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewUserProgress creates an empty ledger for a learner.
func NewUserProgress(userID uuid.UUID, now time.Time) (*UserProgress, error) {
	p := &UserProgress{
		UserID:    userID,
		DailyGoal: DefaultDailyGoal,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the ledger invariants.
func (p *UserProgress) Validate() error {
	if p.UserID == uuid.Nil {
		return ErrEmptyProgressUserID
	}
	if p.Points < 0 {
		return ErrNegativeTotal
	}
	if p.StreakDays < 0 {
		return ErrNegativeStreak
	}
	if p.DailyGoal <= 0 {
		return ErrInvalidDailyGoal
	}
	return nil
}

// HasActivity reports whether the learner has ever been active.
func (p *UserProgress) HasActivity() bool {
	return !p.LastActive.IsZero()
}

// AddPoints adds a non-negative delta to the learner's points.
func (p *UserProgress) AddPoints(delta int) error {
	if delta < 0 {
		return ErrNegativePoints
	}
	p.Points += delta
	return nil
}

// TouchActivity advances the streak state machine for an activity on today.
// The transition is decided from the previously stored LastActive:
//   - same day: nothing changes
//   - the day before: the streak grows by one
//   - anything else, including no previous activity: the streak restarts at 1
//
// A today earlier than LastActive is ignored so the ledger never moves back
// in time. It returns true when the ledger changed.
func (p *UserProgress) TouchActivity(today time.Time) bool {
	day := CalendarDay(today)

	if p.HasActivity() {
		last := CalendarDay(p.LastActive)
		if !day.After(last) {
			return false
		}
		if last.AddDate(0, 0, 1).Equal(day) {
			p.StreakDays++
			p.LastActive = day
			return true
		}
	}

	p.StreakDays = 1
	p.LastActive = day
	return true
}

// SetDailyGoal changes the review session size.
func (p *UserProgress) SetDailyGoal(goal int) error {
	if goal <= 0 {
		return ErrInvalidDailyGoal
	}
	p.DailyGoal = goal
	return nil
}

// CalendarDay truncates t to its calendar date, expressed as midnight UTC.
// The date is taken in t's own location, so callers convert to the learner
// time zone first (see DayIn).
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayIn returns the calendar day of t as observed in loc.
func DayIn(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return CalendarDay(t.In(loc))
}
