// Package main implements the entry point for the sprachweg server, which
// records learners' quiz results and flashcard reviews and serves their
// review queues and progress.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/phrazzld/sprachweg/internal/config"
	"github.com/phrazzld/sprachweg/internal/platform/logger"
	"github.com/phrazzld/sprachweg/internal/platform/postgres"
	"github.com/phrazzld/sprachweg/internal/platform/tracing"

	_ "time/tzdata" // progress.time_zone must resolve without a system zoneinfo
)

type flags struct {
	configPath       string
	migrate          string
	autoMigrate      bool
	seedAchievements bool
	issueToken       string
	tokenTTL         time.Duration
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fset := flag.NewFlagSet("server", flag.ContinueOnError)
	fset.StringVar(&f.configPath, "config", "", "path to a YAML config file (default: ./config.yaml if present)")
	fset.StringVar(&f.migrate, "migrate", "", "run a migration command (up, down, status) and exit")
	fset.BoolVar(&f.autoMigrate, "auto-migrate", false, "apply pending migrations before serving")
	fset.BoolVar(&f.seedAchievements, "seed-achievements", false, "insert missing default achievements and exit")
	fset.StringVar(&f.issueToken, "issue-token", "", "print a bearer token for the given learner ID and exit")
	fset.DurationVar(&f.tokenTTL, "token-ttl", 24*time.Hour, "lifetime of tokens printed by -issue-token")
	if err := fset.Parse(args); err != nil {
		return flags{}, err
	}

	switch f.migrate {
	case "", "up", "down", "status":
	default:
		return flags{}, fmt.Errorf("unknown migrate command %q (want up, down or status)", f.migrate)
	}
	return f, nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("sprachweg: %v", err)
	}
}

func run(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}

	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg, err := config.LoadFromFile(f.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	appLogger.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("time_zone", cfg.Progress.TimeZone))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if f.issueToken != "" {
		return issueToken(ctx, cfg, f.issueToken, f.tokenTTL)
	}

	db, err := postgres.Open(ctx, cfg.Database, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("failed to close database", slog.String("error", err.Error()))
		}
	}()

	if f.migrate != "" {
		return runMigration(ctx, db, appLogger, f.migrate)
	}
	if f.autoMigrate {
		if err := postgres.Migrate(ctx, db, appLogger); err != nil {
			return err
		}
	}

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			appLogger.Error("failed to flush traces", slog.String("error", err.Error()))
		}
	}()

	app, err := newApplication(cfg, appLogger, db, postgresBackend(db, appLogger))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	if f.seedAchievements {
		return app.seedAchievements(ctx)
	}

	return app.startHTTPServer(ctx, app.setupRouter())
}

func runMigration(ctx context.Context, db *sql.DB, l *slog.Logger, command string) error {
	switch command {
	case "up":
		return postgres.Migrate(ctx, db, l)
	case "down":
		return postgres.Rollback(ctx, db, l)
	default:
		return postgres.MigrationStatus(ctx, db, l)
	}
}

func issueToken(ctx context.Context, cfg *config.Config, rawID string, ttl time.Duration) error {
	userID, err := uuid.Parse(rawID)
	if err != nil || userID == uuid.Nil {
		return fmt.Errorf("invalid learner ID %q", rawID)
	}

	jwtService, err := newJWTService(cfg)
	if err != nil {
		return err
	}
	token, err := jwtService.GenerateToken(ctx, userID, ttl)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
