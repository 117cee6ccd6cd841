package srs

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/domain"
)

// isPassing reports whether the quality counts as a successful recall.
func isPassing(quality domain.RecallQuality, params *Params) bool {
	return quality >= params.PassThreshold
}

// easeAdjustment is the SM-2 ease delta for a recall quality.
// Perfect recall adds 0.1, hesitation leaves the factor unchanged and every
// grade below that lowers it, down to -0.8 for a blackout.
func easeAdjustment(quality domain.RecallQuality, params *Params) float64 {
	d := float64(domain.QualityPerfect - quality)
	return params.EaseBase - d*(params.EaseLinear+d*params.EaseQuadratic)
}

// calculateNewEaseFactor determines the new ease factor after a review.
//
// The result is rounded to two decimals so repeated adjustments do not
// accumulate floating point drift, then clamped to the configured limits.
func calculateNewEaseFactor(
	currentEF float64,
	quality domain.RecallQuality,
	params *Params,
) float64 {
	newEF := math.Round((currentEF+easeAdjustment(quality, params))*100) / 100

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}
	if params.MaxEaseFactor > 0 && newEF > params.MaxEaseFactor {
		newEF = params.MaxEaseFactor
	}

	return newEF
}

// calculateNewInterval determines the interval in days after a review.
//
// Parameters:
//   - currentInterval: the interval before this review
//   - reviewCount: the success counter after this review
//   - easeFactor: the updated ease factor
//   - passed: whether the review was a successful recall
//
// A failed review always restarts at one day. Successful reviews bootstrap
// with FirstInterval and SecondInterval, then grow by the ease factor. A
// successful review never shortens the interval, and no interval exceeds
// MaxInterval.
func calculateNewInterval(
	currentInterval int,
	reviewCount int,
	easeFactor float64,
	passed bool,
	params *Params,
) int {
	if !passed {
		return 1
	}

	var next int
	switch reviewCount {
	case 1:
		next = params.FirstInterval
	case 2:
		next = params.SecondInterval
	default:
		grown := math.Round(float64(currentInterval) * easeFactor)
		// Clamp before converting so huge products cannot overflow int
		if grown > float64(params.MaxInterval) {
			grown = float64(params.MaxInterval)
		}
		next = int(grown)
	}

	if next < currentInterval {
		next = currentInterval
	}
	if next > params.MaxInterval {
		next = params.MaxInterval
	}
	if next < 1 {
		next = 1
	}
	return next
}

// calculateNextState creates the state that follows a review.
//
// prior is nil for a card the learner has never reviewed, in which case the
// domain defaults are used as the starting point. The prior state is never
// modified.
//
// Review count policy: a successful review increments the counter, a failed
// review resets it to zero so the interval bootstrap starts over.
func calculateNextState(
	userID, cardID uuid.UUID,
	prior *domain.CardReviewState,
	quality domain.RecallQuality,
	now time.Time,
	params *Params,
) *domain.CardReviewState {
	now = now.UTC()

	var next domain.CardReviewState
	if prior == nil {
		next = *domain.NewCardReviewState(userID, cardID, now)
	} else {
		next = *prior
	}

	passed := isPassing(quality, params)

	next.EaseFactor = calculateNewEaseFactor(next.EaseFactor, quality, params)
	if passed {
		next.ReviewCount++
	} else {
		next.ReviewCount = 0
	}
	next.Interval = calculateNewInterval(next.Interval, next.ReviewCount, next.EaseFactor, passed, params)
	next.LastReviewedAt = now
	next.NextReview = now.AddDate(0, 0, next.Interval)
	next.UpdatedAt = now

	return &next
}
