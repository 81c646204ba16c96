package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/diewo77/go-quotes/internal/config"
	"github.com/diewo77/go-quotes/internal/db"
	"github.com/diewo77/go-quotes/internal/logger"
	"github.com/diewo77/go-quotes/internal/models"
	"github.com/diewo77/go-quotes/internal/pricing"
	"github.com/diewo77/go-quotes/internal/services"
)

var errUsage = errors.New("usage")

// env is what every database-backed command needs.
type env struct {
	cfg *config.Config
	db  *gorm.DB
	log zerolog.Logger
	svc *services.Registry
}

// opener builds an env. Tests swap it for an in-memory database.
type opener func(ctx context.Context) (*env, error)

func openEnv(ctx context.Context) (*env, error) {
	cfg := config.Load()
	log := logger.New(logger.Config{Level: cfg.App.LogLevel, Pretty: true, Out: os.Stderr})
	pricing.SetLogger(log)
	gdb, err := db.Open(cfg.Database, false, log)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg: cfg,
		db:  gdb,
		log: log,
		svc: services.NewRegistry(gdb, cfg.Pricing.Policy(), cfg.Pricing.Rates, log),
	}, nil
}

func (e *env) close() {
	if err := db.Close(e.db); err != nil {
		e.log.Warn().Err(err).Msg("Closing database")
	}
}

// findUser accepts a numeric id or an email address.
func (e *env) findUser(ctx context.Context, ref string) (*models.User, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: -user is required", errUsage)
	}
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		return e.svc.Users.Get(ctx, uint(id))
	}
	var u models.User
	if err := e.db.WithContext(ctx).Where("email = ?", ref).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %q: %w", ref, services.ErrNotFound)
		}
		return nil, err
	}
	return &u, nil
}

// exitStatus reports err on stderr and picks the exit status.
func exitStatus(w io.Writer, err error) subcommands.ExitStatus {
	if err == nil {
		return subcommands.ExitSuccess
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	if errors.Is(err, errUsage) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}
