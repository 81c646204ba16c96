package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/diewo77/go-quotes/httpx"
	"github.com/diewo77/go-quotes/internal/pricing"
	"github.com/diewo77/go-quotes/internal/services"
)

type RateHandler struct {
	rates *services.RateService
	log   zerolog.Logger
}

func NewRateHandler(rates *services.RateService, log zerolog.Logger) *RateHandler {
	return &RateHandler{rates: rates, log: log.With().Str("handler", "rates").Logger()}
}

func (h *RateHandler) RegisterRoutes(r chi.Router) {
	r.Route("/rates", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Reset)
		r.Post("/convert", h.Convert)
	})
}

type convertRequest struct {
	Amount   decimal.Decimal  `json:"amount"`
	Currency pricing.Currency `json:"currency"`
}

func (h *RateHandler) Get(w http.ResponseWriter, r *http.Request) {
	table, err := h.rates.Table(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, table)
}

// Update upserts the given rates; currencies left out keep their value.
func (h *RateHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in map[string]decimal.Decimal
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	rates := make(pricing.RateTable, len(in))
	for code, rate := range in {
		rates[pricing.Currency(strings.ToUpper(strings.TrimSpace(code)))] = rate
	}
	table, err := h.rates.Update(r.Context(), userID(r), rates)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, table)
}

// Reset drops the user's overrides.
func (h *RateHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.rates.Reset(r.Context(), userID(r)); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RateHandler) Convert(w http.ResponseWriter, r *http.Request) {
	var in convertRequest
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	c, err := h.rates.Convert(r.Context(), userID(r), in.Amount, in.Currency)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}
