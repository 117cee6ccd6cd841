package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Validation errors for Achievement
var (
	ErrEmptyAchievementName   = errors.New("achievement name cannot be empty")
	ErrNegativePointsRequired = errors.New("achievement points required cannot be negative")
)

// Achievement is a catalog entry unlocked once a learner's points reach
// PointsRequired. Entries are never modified after creation.
type Achievement struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Icon           string    `json:"icon"`
	PointsRequired int       `json:"points_required"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewAchievement creates a catalog entry with a fresh ID.
func NewAchievement(name, description, icon string, pointsRequired int) (*Achievement, error) {
	a := &Achievement{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(name),
		Description:    description,
		Icon:           icon,
		PointsRequired: pointsRequired,
		CreatedAt:      time.Now().UTC(),
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks the catalog entry.
func (a *Achievement) Validate() error {
	if a.Name == "" {
		return ErrEmptyAchievementName
	}
	if a.PointsRequired < 0 {
		return ErrNegativePointsRequired
	}
	return nil
}

// QualifiesAt reports whether the achievement is earned at the given points.
func (a *Achievement) QualifiesAt(points int) bool {
	return a.PointsRequired <= points
}

// AchievementUnlock records that a learner earned an achievement.
type AchievementUnlock struct {
	UserID        uuid.UUID `json:"user_id"`
	AchievementID uuid.UUID `json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}

// UnlockedAchievement is a catalog entry together with when a learner earned it.
type UnlockedAchievement struct {
	Achievement
	UnlockedAt time.Time `json:"unlocked_at"`
}
