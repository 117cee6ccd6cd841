package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/domain"
)

// Common errors
var (
	ErrEmptyKey      = errors.New("user and card IDs are required")
	ErrStateMismatch = errors.New("prior state belongs to a different user or card")
	ErrInvalidParams = errors.New("invalid SRS parameters")
)

// Service defines the interface for SRS algorithm operations
type Service interface {
	// CalculateNextReview computes the state that follows a review of cardID by userID.
	// prior is nil when the learner has never reviewed the card.
	// Returns domain.ErrInvalidRecallQuality for grades outside 0..5.
	CalculateNextReview(
		userID, cardID uuid.UUID,
		prior *domain.CardReviewState,
		quality domain.RecallQuality,
		now time.Time,
	) (*domain.CardReviewState, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() (Service, error) {
	return NewServiceWithParams(NewDefaultParams())
}

// NewServiceWithParams creates a new SRS service with custom parameters
func NewServiceWithParams(params *Params) (Service, error) {
	if params == nil {
		return nil, fmt.Errorf("%w: params cannot be nil", ErrInvalidParams)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &defaultService{
		params: params,
	}, nil
}

// CalculateNextReview implements the Service interface
func (s *defaultService) CalculateNextReview(
	userID, cardID uuid.UUID,
	prior *domain.CardReviewState,
	quality domain.RecallQuality,
	now time.Time,
) (*domain.CardReviewState, error) {
	if userID == uuid.Nil || cardID == uuid.Nil {
		return nil, ErrEmptyKey
	}
	if !quality.Valid() {
		return nil, domain.ErrInvalidRecallQuality
	}
	if prior != nil && (prior.UserID != userID || prior.CardID != cardID) {
		return nil, ErrStateMismatch
	}

	return calculateNextState(userID, cardID, prior, quality, now, s.params), nil
}
