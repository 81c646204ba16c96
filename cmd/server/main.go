package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/diewo77/go-quotes/internal/config"
	"github.com/diewo77/go-quotes/internal/db"
	"github.com/diewo77/go-quotes/internal/logger"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()

	log := logger.New(logger.Config{Level: cfg.App.LogLevel, Pretty: cfg.App.LogPretty || cfg.App.Dev})
	logger.SetGlobal(log)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	dbConn, err := db.Open(cfg.Database, cfg.App.Dev && cfg.App.LogLevel == "debug", log)
	if err != nil {
		return err
	}
	defer db.Close(dbConn)

	if *migrateOnlyFlag {
		if err := db.Setup(dbConn, cfg, log); err != nil {
			return err
		}
		log.Info().Msg("Migrations completed successfully")
		return nil
	}

	if *seedOnlyFlag {
		if err := db.Seed(dbConn, log); err != nil {
			return err
		}
		log.Info().Msg("Seeding completed successfully")
		return nil
	}

	if err := db.Setup(dbConn, cfg, log); err != nil {
		return err
	}
	if cfg.App.Seed {
		if err := db.Seed(dbConn, log); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg, dbConn, log)
	if err != nil {
		return err
	}
	app.Start()

	errCh := make(chan error, 1)
	go func() {
		if err := app.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received")
	case err := <-errCh:
		app.Stop(context.Background())
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	app.Stop(shutdownCtx)
	log.Info().Msg("Server stopped gracefully")
	return nil
}
