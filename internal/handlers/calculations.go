package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/diewo77/go-quotes/httpx"
	"github.com/diewo77/go-quotes/internal/pricing"
	"github.com/diewo77/go-quotes/internal/services"
)

type CalculationHandler struct {
	calculations *services.CalculationService
	log          zerolog.Logger
}

func NewCalculationHandler(calculations *services.CalculationService, log zerolog.Logger) *CalculationHandler {
	return &CalculationHandler{calculations: calculations, log: log.With().Str("handler", "calculations").Logger()}
}

func (h *CalculationHandler) RegisterRoutes(r chi.Router) {
	r.Route("/calculations", func(r chi.Router) {
		r.Post("/preview", h.Preview)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/quote", h.ToQuote)
	})
}

// previewRequest lets a caller try rates other than their stored table.
type previewRequest struct {
	Items []pricing.LineItem `json:"items"`
	Rates pricing.RateTable  `json:"rates"`
}

type toQuoteRequest struct {
	ClientID uint `json:"client_id"`
}

func (h *CalculationHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var in previewRequest
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	p, err := h.calculations.Preview(r.Context(), userID(r), in.Items, in.Rates)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *CalculationHandler) List(w http.ResponseWriter, r *http.Request) {
	page := pageFrom(r)
	items, total, err := h.calculations.List(r.Context(), userID(r), page)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newList(items, total, page))
}

func (h *CalculationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CalculationInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	calc, err := h.calculations.Save(r.Context(), userID(r), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, calc)
}

func (h *CalculationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	calc, err := h.calculations.Get(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, calc)
}

func (h *CalculationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.calculations.Delete(r.Context(), userID(r), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToQuote drafts a quote from a saved calculation.
func (h *CalculationHandler) ToQuote(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var in toQuoteRequest
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	quote, err := h.calculations.ToQuote(r.Context(), userID(r), id, in.ClientID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, quote)
}
