package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Validation errors for QuizAttempt
var (
	ErrEmptyAttemptUserID   = errors.New("quiz attempt user ID cannot be empty")
	ErrEmptyAttemptLessonID = errors.New("quiz attempt lesson ID cannot be empty")
	ErrInvalidScore         = errors.New("score must be between 0 and 100")
)

// QuizAttempt is the latest graded submission of a learner for a lesson.
// There is at most one per (user, lesson); a new submission replaces it.
type QuizAttempt struct {
	UserID    uuid.UUID         `json:"user_id"`
	LessonID  uuid.UUID         `json:"lesson_id"`
	Score     int               `json:"score"`
	Completed bool              `json:"completed"`
	Answers   map[string]string `json:"answers"` // Exercise ID -> submitted text
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NewQuizAttempt creates a completed attempt.
func NewQuizAttempt(
	userID, lessonID uuid.UUID,
	score int,
	answers map[string]string,
	now time.Time,
) (*QuizAttempt, error) {
	if answers == nil {
		answers = map[string]string{}
	}
	a := &QuizAttempt{
		UserID:    userID,
		LessonID:  lessonID,
		Score:     score,
		Completed: true,
		Answers:   answers,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks the attempt.
func (a *QuizAttempt) Validate() error {
	if a.UserID == uuid.Nil {
		return ErrEmptyAttemptUserID
	}
	if a.LessonID == uuid.Nil {
		return ErrEmptyAttemptLessonID
	}
	if a.Score < 0 || a.Score > 100 {
		return ErrInvalidScore
	}
	return nil
}
