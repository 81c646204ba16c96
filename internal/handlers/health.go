package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/diewo77/go-quotes/httpx"
	"github.com/diewo77/go-quotes/internal/scheduler"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db    *gorm.DB
	sched *scheduler.Scheduler
}

// NewHealthHandler accepts a nil scheduler when no jobs are configured.
func NewHealthHandler(db *gorm.DB, sched *scheduler.Scheduler) *HealthHandler {
	return &HealthHandler{db: db, sched: sched}
}

func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Live)
	r.Get("/healthz", h.Ready)
}

type readiness struct {
	Status   string             `json:"status"`
	Database string             `json:"database"`
	Jobs     []scheduler.Status `json:"jobs"`
}

func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready pings the database and reports the scheduled jobs.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	res := readiness{Status: "ok", Database: "ok", Jobs: []scheduler.Status{}}
	status := http.StatusOK

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		res.Status = "degraded"
		res.Database = err.Error()
		status = http.StatusServiceUnavailable
	}
	if h.sched != nil {
		res.Jobs = h.sched.Statuses()
	}
	httpx.JSON(w, status, res)
}
