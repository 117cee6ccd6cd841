package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/sprachweg/internal/api/middleware"
)

// RegisterRoutes mounts the learning endpoints under /api.
func RegisterRoutes(r chi.Router, h *LearningHandler, authMiddleware *middleware.AuthMiddleware) {
	r.Route("/api", func(r chi.Router) {
		// Anonymous quiz submissions are graded but not recorded
		r.With(authMiddleware.OptionalAuthenticate).Post("/lessons/{id}/quiz", h.SubmitQuiz)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/cards/due", h.GetDueCards)
			r.Post("/cards/{id}/review", h.SubmitReview)

			r.Get("/profile", h.GetProfile)
			r.Post("/profile", h.RegisterLearner)
			r.Put("/profile/daily-goal", h.SetDailyGoal)
		})
	})
}
