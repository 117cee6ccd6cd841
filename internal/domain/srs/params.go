package srs

import (
	"fmt"

	"github.com/phrazzld/sprachweg/internal/domain"
)

// Params defines all configurable parameters for the SRS algorithm.
//
// The ease factor update follows SM-2:
//
//	ef' = ef + (EaseBase - d*(EaseLinear + d*EaseQuadratic)), d = 5 - quality
//
// There is no ease ceiling by default: SM-2 lets ease grow with every perfect
// recall, and MaxInterval bounds the schedule however large ease becomes.
type Params struct {
	// Core limits
	MinEaseFactor float64
	MaxEaseFactor float64 // 0 disables the ceiling

	// Grades at or above the threshold count as a successful recall
	PassThreshold domain.RecallQuality

	// Bootstrap intervals for the first two successful reviews
	FirstInterval  int
	SecondInterval int

	// Longest interval in days a review can schedule
	MaxInterval int

	// Ease factor coefficients
	EaseBase      float64
	EaseLinear    float64
	EaseQuadratic float64
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the defaults. The ease coefficients are pointers so that
// zero is a valid override; nil keeps the default.
type ParamsConfig struct {
	MinEaseFactor float64
	MaxEaseFactor float64

	PassThreshold int

	FirstInterval  int
	SecondInterval int
	MaxInterval    int

	EaseBase      *float64
	EaseLinear    *float64
	EaseQuadratic *float64
}

// DefaultMaxInterval caps intervals at roughly a hundred years.
const DefaultMaxInterval = 36500

// NewDefaultParams creates a new Params instance with the classic SM-2 values
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor: domain.MinEaseFactor,
		MaxEaseFactor: 0,

		PassThreshold: domain.QualityCorrectDifficult,

		FirstInterval:  1,
		SecondInterval: 6,
		MaxInterval:    DefaultMaxInterval,

		EaseBase:      0.1,
		EaseLinear:    0.08,
		EaseQuadratic: 0.02,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	// The floor can be raised but never lowered below the domain minimum
	if config.MinEaseFactor > params.MinEaseFactor {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.MaxEaseFactor > 0 {
		params.MaxEaseFactor = config.MaxEaseFactor
	}

	if config.PassThreshold > 0 && domain.RecallQuality(config.PassThreshold).Valid() {
		params.PassThreshold = domain.RecallQuality(config.PassThreshold)
	}

	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}
	if config.MaxInterval > 0 {
		params.MaxInterval = config.MaxInterval
	}

	if config.EaseBase != nil {
		params.EaseBase = *config.EaseBase
	}
	if config.EaseLinear != nil {
		params.EaseLinear = *config.EaseLinear
	}
	if config.EaseQuadratic != nil {
		params.EaseQuadratic = *config.EaseQuadratic
	}

	return params
}

// Validate checks that the parameters describe a usable schedule.
func (p *Params) Validate() error {
	if p.MinEaseFactor < domain.MinEaseFactor {
		return fmt.Errorf("%w: min ease factor %.2f is below %.2f",
			ErrInvalidParams, p.MinEaseFactor, domain.MinEaseFactor)
	}
	if p.MaxEaseFactor != 0 && p.MaxEaseFactor < p.MinEaseFactor {
		return fmt.Errorf("%w: max ease factor %.2f is below min %.2f",
			ErrInvalidParams, p.MaxEaseFactor, p.MinEaseFactor)
	}
	if !p.PassThreshold.Valid() || p.PassThreshold == domain.QualityBlackout {
		return fmt.Errorf("%w: pass threshold %d must be between 1 and 5", ErrInvalidParams, p.PassThreshold)
	}
	if p.FirstInterval < 1 || p.SecondInterval < p.FirstInterval {
		return fmt.Errorf("%w: bootstrap intervals %d and %d must be positive and non-decreasing",
			ErrInvalidParams, p.FirstInterval, p.SecondInterval)
	}
	if p.MaxInterval < p.SecondInterval {
		return fmt.Errorf("%w: max interval %d is below second interval %d",
			ErrInvalidParams, p.MaxInterval, p.SecondInterval)
	}
	if p.EaseLinear < 0 || p.EaseQuadratic < 0 {
		return fmt.Errorf("%w: ease coefficients %.2f and %.2f must not be negative",
			ErrInvalidParams, p.EaseLinear, p.EaseQuadratic)
	}
	return nil
}
