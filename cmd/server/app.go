package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/diewo77/go-quotes/auth"
	"github.com/diewo77/go-quotes/internal/backup"
	"github.com/diewo77/go-quotes/internal/config"
	"github.com/diewo77/go-quotes/internal/pricing"
	"github.com/diewo77/go-quotes/internal/scheduler"
	"github.com/diewo77/go-quotes/internal/server"
	"github.com/diewo77/go-quotes/internal/services"
)

// App owns the long-running parts of the process.
type App struct {
	server    *server.Server
	scheduler *scheduler.Scheduler
	services  *services.Registry
	log       zerolog.Logger
}

// NewApp wires services, auth, the backup job and the HTTP server.
func NewApp(ctx context.Context, cfg *config.Config, gdb *gorm.DB, log zerolog.Logger) (*App, error) {
	svc := services.NewRegistry(gdb, cfg.Pricing.Policy(), cfg.Pricing.Rates, log)

	store, format, err := backup.Open(ctx, cfg.Backup)
	if err != nil {
		return nil, fmt.Errorf("backup store: %w", err)
	}
	svc.EnableBackups(store, format, cfg.Backup.Keep)

	auth.SetSecret(cfg.Auth.SessionSecret)
	tokens := auth.NewTokenManager(cfg.Auth.SessionSecret, time.Duration(cfg.Auth.TokenTTL)*time.Minute)
	auth.SetTokenManager(tokens)
	auth.SetUserVerifier(svc.Users.Exists)
	pricing.SetLogger(log)

	var sched *scheduler.Scheduler
	if cfg.Backup.Schedule != "" {
		sched = scheduler.New(log)
		if err := sched.AddJob(cfg.Backup.Schedule, services.BackupJob{Backups: svc.Backups}); err != nil {
			return nil, fmt.Errorf("schedule backups: %w", err)
		}
	}

	srv := server.New(server.Config{
		Server:    cfg.Server,
		CORS:      cfg.CORS,
		Log:       log,
		DB:        gdb,
		Services:  svc,
		Tokens:    tokens,
		Scheduler: sched,
		DevMode:   cfg.App.Dev,
	})

	return &App{
		server:    srv,
		scheduler: sched,
		services:  svc,
		log:       log.With().Str("component", "app").Logger(),
	}, nil
}

// Start launches background jobs. The HTTP listener is started by the caller.
func (a *App) Start() {
	if a.scheduler != nil {
		a.scheduler.Start()
	}
}

// Stop drains HTTP requests, then waits for running jobs.
func (a *App) Stop(ctx context.Context) {
	if err := a.server.Shutdown(ctx); err != nil {
		a.log.Error().Err(err).Msg("HTTP shutdown failed")
	}
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
}
