package learning

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/domain"
	"github.com/phrazzld/sprachweg/internal/domain/quiz"
	"github.com/phrazzld/sprachweg/internal/events"
	"github.com/phrazzld/sprachweg/internal/platform/logger"
)

// QuizResult is the graded outcome of a quiz submission.
type QuizResult struct {
	LessonID uuid.UUID                     `json:"lesson_id"`
	Score    int                           `json:"score"`
	Correct  int                           `json:"correct"`
	Total    int                           `json:"total"`
	Items    map[uuid.UUID]quiz.ItemResult `json:"results"`

	// FirstCompletion is true when this was the learner's first attempt at
	// the lesson. Always false for anonymous submissions.
	FirstCompletion bool `json:"first_completion"`
}

// SubmitQuiz grades answers against the lesson's exercises.
//
// For an identified learner the attempt replaces any earlier attempt at the
// lesson, and the ledger is credited: points for a first completion, and the
// day's activity for the streak. An anonymous submission (userID is
// uuid.Nil) is only graded.
func (s *Service) SubmitQuiz(
	ctx context.Context,
	userID, lessonID uuid.UUID,
	answers map[string]string,
) (result *QuizResult, err error) {
	ctx, span := s.startSpan(ctx, "SubmitQuiz", userID)
	defer func() { endSpan(span, err) }()

	log := logger.FromContextOrDefault(ctx, s.logger)

	lesson, err := s.deps.Content.GetLesson(ctx, lessonID)
	if err != nil {
		log.Debug("lesson lookup failed",
			slog.String("lesson_id", lessonID.String()),
			slog.String("error", err.Error()))
		return nil, classify("submit_quiz", "failed to load lesson", err)
	}

	graded := quiz.Grade(lesson.Exercises, answers)
	result = &QuizResult{
		LessonID: lessonID,
		Score:    graded.Score,
		Correct:  graded.Correct,
		Total:    graded.Total,
		Items:    graded.Items,
	}

	if userID == uuid.Nil {
		log.Debug("graded anonymous quiz submission",
			slog.String("lesson_id", lessonID.String()),
			slog.Int("score", graded.Score))
		return result, nil
	}

	now := s.now().UTC()
	err = s.runSubmission(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.lockLearner(ctx, tx, userID, now); err != nil {
			return err
		}

		attempt, err := domain.NewQuizAttempt(userID, lessonID, graded.Score, graded.Answers, now)
		if err != nil {
			return err
		}
		first, err := s.deps.Attempts.WithTx(tx).Upsert(ctx, attempt)
		if err != nil {
			return err
		}
		result.FirstCompletion = first

		event := events.NewCompletionEvent(userID, lessonID, graded.Score, graded.Answers, first, now)
		return s.deps.Emitter.Emit(ctx, tx, event)
	})
	if err != nil {
		log.Error("failed to record quiz submission",
			slog.String("user_id", userID.String()),
			slog.String("lesson_id", lessonID.String()),
			slog.String("error", err.Error()))
		return nil, classify("submit_quiz", "failed to record submission", err)
	}

	log.Info("quiz submitted",
		slog.String("user_id", userID.String()),
		slog.String("lesson_id", lessonID.String()),
		slog.Int("score", result.Score),
		slog.Bool("first_completion", result.FirstCompletion))
	return result, nil
}
