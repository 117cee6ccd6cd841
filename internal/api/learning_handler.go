package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/api/shared"
	"github.com/phrazzld/sprachweg/internal/platform/logger"
	"github.com/phrazzld/sprachweg/internal/service/learning"
)

// LearningService is the subset of learning.Service the handlers call.
type LearningService interface {
	SubmitQuiz(ctx context.Context, userID, lessonID uuid.UUID, answers map[string]string) (*learning.QuizResult, error)
	SubmitReview(ctx context.Context, userID, cardID uuid.UUID, quality int) (*learning.ReviewResult, error)
	GetDueCards(ctx context.Context, userID uuid.UUID, asOf time.Time, limit int) ([]uuid.UUID, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*learning.Profile, error)
	RegisterLearner(ctx context.Context, userID uuid.UUID) (*learning.Profile, error)
	SetDailyGoal(ctx context.Context, userID uuid.UUID, goal int) (*learning.Profile, error)
}

var _ LearningService = (*learning.Service)(nil)

// LearningHandler handles quiz, review and profile requests.
type LearningHandler struct {
	service LearningService
	logger  *slog.Logger
	now     func() time.Time
}

// NewLearningHandler creates a new LearningHandler.
func NewLearningHandler(service LearningService, logger *slog.Logger) *LearningHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for LearningHandler")
	}

	return &LearningHandler{
		service: service,
		logger:  logger.With(slog.String("component", "learning_handler")),
		now:     time.Now,
	}
}

// SubmitQuiz handles POST /api/lessons/{id}/quiz. Anonymous requests are
// graded without being recorded.
func (h *LearningHandler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	lessonID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req QuizSubmissionRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	// uuid.Nil is the anonymous learner
	userID, _ := shared.UserIDFromContext(r.Context())

	result, err := h.service.SubmitQuiz(r.Context(), userID, lessonID, req.Answers)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit quiz")
		return
	}

	log.Debug("quiz submitted",
		slog.String("lesson_id", lessonID.String()),
		slog.Int("score", result.Score),
		slog.Bool("first_completion", result.FirstCompletion))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// SubmitReview handles POST /api/cards/{id}/review.
func (h *LearningHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req ReviewSubmissionRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	result, err := h.service.SubmitReview(r.Context(), userID, cardID, *req.Quality)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit review")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// GetDueCards handles GET /api/cards/due.
func (h *LearningHandler) GetDueCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}

	asOf, limit, err := parseDueQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if asOf.IsZero() {
		asOf = h.now().UTC()
	}

	ids, err := h.service.GetDueCards(r.Context(), userID, asOf, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get due cards")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DueCardsResponse{AsOf: asOf, CardIDs: ids})
}

// GetProfile handles GET /api/profile.
func (h *LearningHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireLearner(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get profile")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, profile)
}

// RegisterLearner handles POST /api/profile. It is idempotent.
func (h *LearningHandler) RegisterLearner(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireLearner(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	profile, err := h.service.RegisterLearner(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to register learner")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, profile)
}

// SetDailyGoal handles PUT /api/profile/daily-goal.
func (h *LearningHandler) SetDailyGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireLearner(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	var req DailyGoalRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	profile, err := h.service.SetDailyGoal(r.Context(), userID, req.DailyGoal)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to set daily goal")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, profile)
}
