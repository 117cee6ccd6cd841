package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Defaults for a card that has never been reviewed.
const (
	DefaultEaseFactor = 2.5
	DefaultInterval   = 1
	MinEaseFactor     = 1.3
)

// RecallQuality is how well a learner remembered a card, on the SM-2 scale.
type RecallQuality int

// Recall quality values
const (
	// Complete blackout
	QualityBlackout RecallQuality = 0
	// Incorrect, but remembered on seeing the answer
	QualityIncorrect RecallQuality = 1
	// Incorrect, but the answer felt familiar
	QualityIncorrectFamiliar RecallQuality = 2
	// Correct with significant effort
	QualityCorrectDifficult RecallQuality = 3
	// Correct after some hesitation
	QualityCorrectHesitation RecallQuality = 4
	// Perfect recall
	QualityPerfect RecallQuality = 5
)

// Valid reports whether q is on the 0..5 scale.
func (q RecallQuality) Valid() bool {
	return q >= QualityBlackout && q <= QualityPerfect
}

// Validation errors for CardReviewState
var (
	ErrEmptyStateUserID  = errors.New("card review state user ID cannot be empty")
	ErrEmptyStateCardID  = errors.New("card review state card ID cannot be empty")
	ErrInvalidInterval   = errors.New("interval must be at least 1 day")
	ErrInvalidEaseFactor = errors.New("ease factor must be at least 1.3")
	ErrNegativeReviews   = errors.New("review count cannot be negative")
)

// CardReviewState is a learner's spaced repetition schedule for one card.
// It exists only after the first review; callers model "never reviewed" as a
// nil *CardReviewState.
type CardReviewState struct {
	UserID         uuid.UUID `json:"user_id"`
	CardID         uuid.UUID `json:"card_id"`
	EaseFactor     float64   `json:"ease_factor"`
	Interval       int       `json:"interval"` // Days until the next review
	ReviewCount    int       `json:"review_count"`
	LastReviewedAt time.Time `json:"last_reviewed_at"`
	NextReview     time.Time `json:"next_review"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewCardReviewState returns the default state a card starts from on its
// first review.
func NewCardReviewState(userID, cardID uuid.UUID, now time.Time) *CardReviewState {
	now = now.UTC()
	return &CardReviewState{
		UserID:      userID,
		CardID:      cardID,
		EaseFactor:  DefaultEaseFactor,
		Interval:    DefaultInterval,
		ReviewCount: 0,
		NextReview:  now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate checks the state invariants.
func (s *CardReviewState) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrEmptyStateUserID
	}
	if s.CardID == uuid.Nil {
		return ErrEmptyStateCardID
	}
	if s.Interval < 1 {
		return ErrInvalidInterval
	}
	if s.EaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}
	if s.ReviewCount < 0 {
		return ErrNegativeReviews
	}
	return nil
}

// IsDue reports whether the card should be reviewed at asOf.
func (s *CardReviewState) IsDue(asOf time.Time) bool {
	return !s.NextReview.After(asOf)
}
