package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/diewo77/go-quotes/httpx"
	"github.com/diewo77/go-quotes/internal/services"
)

type AnalyticsHandler struct {
	analytics *services.AnalyticsService
	log       zerolog.Logger
	now       func() time.Time
}

func NewAnalyticsHandler(analytics *services.AnalyticsService, log zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, log: log.With().Str("handler", "analytics").Logger(), now: time.Now}
}

func (h *AnalyticsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/analytics", h.Report)
	r.Get("/dashboard", h.Dashboard)
}

// Report analyzes one period, the current month by default.
func (h *AnalyticsHandler) Report(w http.ResponseWriter, r *http.Request) {
	period, _, err := periodFrom(r, h.now(), false)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	rep, err := h.analytics.Report(r.Context(), userID(r), period)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rep)
}

func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ov, err := h.analytics.Overview(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ov)
}
