// Package server assembles the chi router and owns the HTTP listener.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/diewo77/go-quotes/auth"
	"github.com/diewo77/go-quotes/internal/config"
	"github.com/diewo77/go-quotes/internal/handlers"
	"github.com/diewo77/go-quotes/internal/middleware"
	"github.com/diewo77/go-quotes/internal/scheduler"
	"github.com/diewo77/go-quotes/internal/services"
)

type Config struct {
	Server    config.ServerConfig
	CORS      config.CORSConfig
	Log       zerolog.Logger
	DB        *gorm.DB
	Services  *services.Registry
	Tokens    *auth.TokenManager
	Scheduler *scheduler.Scheduler
	DevMode   bool
}

type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
}

func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
	}

	s.setupMiddleware(cfg)
	s.setupRoutes(cfg)

	s.server = &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      s.router,
		ReadTimeout:  seconds(cfg.Server.ReadTimeout, 15),
		WriteTimeout: seconds(cfg.Server.WriteTimeout, 30),
		IdleTimeout:  seconds(cfg.Server.IdleTimeout, 60),
	}

	return s
}

func seconds(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Second
}

func (s *Server) setupMiddleware(cfg Config) {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(middleware.Logging(s.log))
	s.router.Use(middleware.Recover(s.log))
	s.router.Use(chimw.Timeout(60 * time.Second))

	if len(cfg.CORS.Origins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORS.Origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Accept-Language", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	if !cfg.DevMode {
		s.router.Use(chimw.Compress(5, "application/json", "text/html"))
	}

	s.router.Use(middleware.Prefs)
	s.router.Use(auth.Middleware)
}

func (s *Server) setupRoutes(cfg Config) {
	svc := cfg.Services
	log := cfg.Log

	handlers.NewHealthHandler(cfg.DB, cfg.Scheduler).RegisterRoutes(s.router)
	handlers.NewAuthHandler(svc.Users, cfg.Tokens, log).RegisterRoutes(s.router)

	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		handlers.NewClientHandler(svc.Clients, log).RegisterRoutes(r)
		handlers.NewQuoteHandler(svc.Quotes, svc.Exports, log).RegisterRoutes(r)
		handlers.NewCalculationHandler(svc.Calculations, log).RegisterRoutes(r)
		handlers.NewRateHandler(svc.Rates, log).RegisterRoutes(r)
		handlers.NewAnalyticsHandler(svc.Analytics, log).RegisterRoutes(r)
		handlers.NewSettingsHandler(svc.Company, log).RegisterRoutes(r)
		handlers.NewExportHandler(svc.Exports, log).RegisterRoutes(r)
		if svc.Backups != nil {
			handlers.NewBackupHandler(svc.Backups, log).RegisterRoutes(r)
		}
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
