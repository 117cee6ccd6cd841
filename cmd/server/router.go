package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/sprachweg/internal/api"
	apiMiddleware "github.com/phrazzld/sprachweg/internal/api/middleware"
)

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))

	learningHandler := api.NewLearningHandler(app.learning, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	api.RegisterRoutes(r, learningHandler, authMiddleware)

	var pinger api.Pinger
	if app.db != nil {
		pinger = app.db
	}
	r.Method(http.MethodGet, "/health", api.NewHealthHandler(pinger))

	return r
}
