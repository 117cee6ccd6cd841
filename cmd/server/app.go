package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/sprachweg/internal/config"
	"github.com/phrazzld/sprachweg/internal/domain/srs"
	"github.com/phrazzld/sprachweg/internal/events"
	"github.com/phrazzld/sprachweg/internal/platform/postgres"
	"github.com/phrazzld/sprachweg/internal/service/auth"
	"github.com/phrazzld/sprachweg/internal/service/learning"
	"github.com/phrazzld/sprachweg/internal/service/progress"
	"github.com/phrazzld/sprachweg/internal/store"
)

// backend bundles the stores of one storage implementation.
type backend struct {
	tx           store.TxManager
	content      store.ContentStore
	progress     store.UserProgressStore
	reviewStates store.CardReviewStateStore
	attempts     store.QuizAttemptStore
	achievements store.AchievementStore
}

func postgresBackend(db *sql.DB, logger *slog.Logger) backend {
	return backend{
		tx:           postgres.NewTxManager(db),
		content:      postgres.NewPostgresContentStore(db, logger),
		progress:     postgres.NewPostgresUserProgressStore(db, logger),
		reviewStates: postgres.NewPostgresCardReviewStateStore(db, logger),
		attempts:     postgres.NewPostgresQuizAttemptStore(db, logger),
		achievements: postgres.NewPostgresAchievementStore(db, logger),
	}
}

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB // nil when running without Postgres

	jwtService   auth.JWTService
	achievements *progress.AchievementEngine
	learning     *learning.Service
}

// newApplication wires the learning service on top of the given backend.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB, b backend) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = newJWTService(cfg)
	if err != nil {
		return nil, err
	}

	scheduler, err := srs.NewServiceWithParams(srsParams(cfg.SRS))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize scheduler: %w", err)
	}

	app.achievements = progress.NewAchievementEngine(b.achievements, logger)
	ledger, err := progress.NewLedger(b.progress, app.achievements, cfg.Progress, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize progress ledger: %w", err)
	}

	dispatcher := events.NewDispatcher(logger)
	dispatcher.RegisterHandler(ledger)

	app.learning, err = learning.NewService(learning.Dependencies{
		Tx:           b.tx,
		Content:      b.content,
		Progress:     b.progress,
		ReviewStates: b.reviewStates,
		Attempts:     b.attempts,
		Achievements: b.achievements,
		Ledger:       ledger,
		Scheduler:    scheduler,
		Emitter:      dispatcher,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize learning service: %w", err)
	}

	logger.Info("application initialized",
		slog.Int("points_divisor", cfg.Progress.PointsDivisor),
		slog.Int("default_daily_goal", cfg.Progress.DefaultDailyGoal))
	return app, nil
}

func newJWTService(cfg *config.Config) (auth.JWTService, error) {
	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	return jwtService, nil
}

// srsParams applies the configured overrides to the default schedule.
func srsParams(cfg config.SRSConfig) *srs.Params {
	return srs.NewParams(srs.ParamsConfig{
		MinEaseFactor:  cfg.MinEaseFactor,
		MaxEaseFactor:  cfg.MaxEaseFactor,
		PassThreshold:  cfg.PassThreshold,
		FirstInterval:  cfg.FirstInterval,
		SecondInterval: cfg.SecondInterval,
		MaxInterval:    cfg.MaxInterval,
		EaseBase:       cfg.EaseBase,
		EaseLinear:     cfg.EaseLinear,
		EaseQuadratic:  cfg.EaseQuadratic,
	})
}

// seedAchievements makes sure the default catalog exists. Existing entries
// are left untouched.
func (app *application) seedAchievements(ctx context.Context) error {
	added, err := app.achievements.SeedCatalog(ctx, progress.DefaultCatalog())
	if err != nil {
		return fmt.Errorf("failed to seed achievement catalog: %w", err)
	}
	app.logger.Info("achievement catalog ready", slog.Int("added", added))
	return nil
}
