// Package quiz grades lesson quiz submissions. Grading is pure: it never
// touches storage and has no side effects.
package quiz

import (
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/domain"
)

// ItemResult is the outcome for a single exercise.
type ItemResult struct {
	Correct       bool   `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

// Result is a graded submission.
type Result struct {
	Score   int                      `json:"score"`
	Correct int                      `json:"correct"`
	Total   int                      `json:"total"`
	Items   map[uuid.UUID]ItemResult `json:"results"`

	// Answers holds the submitted text for the lesson's exercises, keyed by
	// canonical exercise ID. Entries for unknown exercises are dropped.
	Answers map[string]string `json:"-"`
}

// Grade scores a submission against the ordered exercises of a lesson.
//
// Submission keys are exercise IDs; keys that are not valid IDs or that do
// not belong to the lesson are ignored. A missing answer counts as incorrect.
// The score is 100 * correct / total rounded half to even, and 0 for a
// lesson without exercises.
func Grade(exercises []domain.Exercise, submission map[string]string) Result {
	answers := normalizeSubmission(submission)

	res := Result{
		Total:   len(exercises),
		Items:   make(map[uuid.UUID]ItemResult, len(exercises)),
		Answers: make(map[string]string, len(exercises)),
	}

	for _, ex := range exercises {
		given, ok := answers[ex.ID]
		if ok {
			res.Answers[ex.ID.String()] = given
		}

		correct := ok && IsCorrect(ex, given)
		if correct {
			res.Correct++
		}

		res.Items[ex.ID] = ItemResult{
			Correct:       correct,
			CorrectAnswer: ex.Answer,
			Explanation:   ex.Explanation,
		}
	}

	res.Score = Score(res.Correct, res.Total)
	return res
}

// IsCorrect compares a submitted answer with the exercise answer.
// Multiple choice must match exactly after trimming the submission; true/false
// and fill-in-the-blank ignore surrounding whitespace and case. Unknown
// exercise types are never correct.
func IsCorrect(ex domain.Exercise, given string) bool {
	given = strings.TrimSpace(given)

	switch ex.Type {
	case domain.ExerciseMultipleChoice:
		return given == ex.Answer
	case domain.ExerciseTrueFalse, domain.ExerciseFillBlank:
		return strings.EqualFold(given, strings.TrimSpace(ex.Answer))
	default:
		return false
	}
}

// Score converts a correct count into a percentage rounded half to even.
func Score(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.RoundToEven(float64(correct) / float64(total) * 100))
}

func normalizeSubmission(submission map[string]string) map[uuid.UUID]string {
	out := make(map[uuid.UUID]string, len(submission))
	for key, value := range submission {
		id, err := uuid.Parse(strings.TrimSpace(key))
		if err != nil || id == uuid.Nil {
			continue
		}
		out[id] = value
	}
	return out
}
