package api

import (
	"time"

	"github.com/google/uuid"
)

// QuizSubmissionRequest is the body of POST /api/lessons/{id}/quiz. Answers
// are keyed by exercise ID.
type QuizSubmissionRequest struct {
	Answers map[string]string `json:"answers" validate:"required"`
}

// ReviewSubmissionRequest is the body of POST /api/cards/{id}/review.
type ReviewSubmissionRequest struct {
	Quality *int `json:"quality" validate:"required,min=0,max=5"`
}

// DailyGoalRequest is the body of PUT /api/profile/daily-goal.
type DailyGoalRequest struct {
	DailyGoal int `json:"daily_goal" validate:"required,gt=0"`
}

// DueCardsResponse lists the cards to review next, in order.
type DueCardsResponse struct {
	AsOf    time.Time   `json:"as_of"`
	CardIDs []uuid.UUID `json:"card_ids"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
