package events

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	TypeLessonCompleted = "lesson.completed"
	TypeCardReviewed    = "card.reviewed"
)

// Event is implemented by every learning event.
type Event interface {
	// EventID uniquely identifies the event.
	EventID() uuid.UUID
	// EventType is one of the Type* constants.
	EventType() string
	// Learner is the user the event belongs to.
	Learner() uuid.UUID
	// Time is when the activity happened.
	Time() time.Time
}

// CompletionEvent is raised when a learner submits a lesson quiz.
type CompletionEvent struct {
	ID         uuid.UUID         `json:"id"`
	UserID     uuid.UUID         `json:"user_id"`
	LessonID   uuid.UUID         `json:"lesson_id"`
	Score      int               `json:"score"`
	Completed  bool              `json:"completed"`
	Answers    map[string]string `json:"answers"`
	OccurredAt time.Time         `json:"occurred_at"`

	// FirstCompletion is true when no earlier attempt existed for the lesson.
	FirstCompletion bool `json:"first_completion"`
}

// NewCompletionEvent creates a CompletionEvent for a graded quiz.
func NewCompletionEvent(
	userID, lessonID uuid.UUID,
	score int,
	answers map[string]string,
	firstCompletion bool,
	occurredAt time.Time,
) *CompletionEvent {
	return &CompletionEvent{
		ID:              uuid.New(),
		UserID:          userID,
		LessonID:        lessonID,
		Score:           score,
		Completed:       true,
		Answers:         answers,
		OccurredAt:      occurredAt,
		FirstCompletion: firstCompletion,
	}
}

// EventID implements Event.
func (e *CompletionEvent) EventID() uuid.UUID { return e.ID }

// EventType implements Event.
func (e *CompletionEvent) EventType() string { return TypeLessonCompleted }

// Learner implements Event.
func (e *CompletionEvent) Learner() uuid.UUID { return e.UserID }

// Time implements Event.
func (e *CompletionEvent) Time() time.Time { return e.OccurredAt }

// ReviewEvent is raised when a learner grades a flashcard review.
type ReviewEvent struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	CardID     uuid.UUID `json:"card_id"`
	Quality    int       `json:"quality"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewReviewEvent creates a ReviewEvent.
func NewReviewEvent(userID, cardID uuid.UUID, quality int, occurredAt time.Time) *ReviewEvent {
	return &ReviewEvent{
		ID:         uuid.New(),
		UserID:     userID,
		CardID:     cardID,
		Quality:    quality,
		OccurredAt: occurredAt,
	}
}

// EventID implements Event.
func (e *ReviewEvent) EventID() uuid.UUID { return e.ID }

// EventType implements Event.
func (e *ReviewEvent) EventType() string { return TypeCardReviewed }

// Learner implements Event.
func (e *ReviewEvent) Learner() uuid.UUID { return e.UserID }

// Time implements Event.
func (e *ReviewEvent) Time() time.Time { return e.OccurredAt }

// Handler defines an interface for components that react to events.
type Handler interface {
	// HandleEvent processes the event. tx is the transaction of the submission
	// that raised it; it is nil for backends without SQL transactions.
	// Returning an error aborts the submission.
	HandleEvent(ctx context.Context, tx *sql.Tx, event Event) error
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(ctx context.Context, tx *sql.Tx, event Event) error

// HandleEvent calls f(ctx, tx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, tx *sql.Tx, event Event) error {
	return f(ctx, tx, event)
}

// Emitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type Emitter interface {
	// Emit delivers the event to all registered handlers.
	Emit(ctx context.Context, tx *sql.Tx, event Event) error
}
