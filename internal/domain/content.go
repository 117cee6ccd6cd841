package domain

import "github.com/google/uuid"

// ExerciseType identifies how an exercise answer is compared.
type ExerciseType string

// Exercise types supplied by the content store
const (
	ExerciseMultipleChoice ExerciseType = "mcq"
	ExerciseTrueFalse      ExerciseType = "tf"
	ExerciseFillBlank      ExerciseType = "fill"
)

// Exercise is a single graded item of a lesson quiz.
type Exercise struct {
	ID          uuid.UUID    `json:"id"`
	Type        ExerciseType `json:"type"`
	Question    string       `json:"question"`
	Answer      string       `json:"answer"`
	Explanation string       `json:"explanation"`
	Order       int          `json:"order"`
}

// Lesson is the read-only view of a lesson the engine needs for grading.
// Exercises are ordered.
type Lesson struct {
	ID        uuid.UUID  `json:"id"`
	Slug      string     `json:"slug"`
	Title     string     `json:"title"`
	Exercises []Exercise `json:"exercises"`
}

// Card is the read-only view of a flashcard. The deck is for display only.
type Card struct {
	ID     uuid.UUID `json:"id"`
	DeckID uuid.UUID `json:"deck_id"`
	Front  string    `json:"front"`
	Back   string    `json:"back"`
}
