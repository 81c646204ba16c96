package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/diewo77/go-quotes/httpx"
	"github.com/diewo77/go-quotes/internal/services"
)

// SettingsHandler serves the company settings printed on quotes.
type SettingsHandler struct {
	company *services.CompanyService
	log     zerolog.Logger
}

func NewSettingsHandler(company *services.CompanyService, log zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{company: company, log: log.With().Str("handler", "settings").Logger()}
}

func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/settings", h.Get)
	r.Put("/settings", h.Save)
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	cs, err := h.company.Get(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cs)
}

func (h *SettingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	var in services.CompanyInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	cs, err := h.company.Save(r.Context(), userID(r), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cs)
}
