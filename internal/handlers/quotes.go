package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/diewo77/go-quotes/httpx"
	"github.com/diewo77/go-quotes/internal/middleware"
	"github.com/diewo77/go-quotes/internal/models"
	"github.com/diewo77/go-quotes/internal/pricing"
	"github.com/diewo77/go-quotes/internal/services"
	"github.com/diewo77/go-quotes/view"
)

type QuoteHandler struct {
	quotes  *services.QuoteService
	exports *services.ExportService
	log     zerolog.Logger
}

func NewQuoteHandler(quotes *services.QuoteService, exports *services.ExportService, log zerolog.Logger) *QuoteHandler {
	return &QuoteHandler{quotes: quotes, exports: exports, log: log.With().Str("handler", "quotes").Logger()}
}

func (h *QuoteHandler) RegisterRoutes(r chi.Router) {
	r.Route("/quotes", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
			r.Post("/items", h.AddItem)
			r.Put("/items/{itemID}", h.UpdateItem)
			r.Delete("/items/{itemID}", h.RemoveItem)
			r.Post("/recompute", h.Recompute)
			r.Get("/pdf", h.PDF)
			r.Get("/print", h.Print)
		})
	})
}

func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := services.QuoteFilter{
		Status: models.QuoteStatus(q.Get("status")),
		Search: q.Get("q"),
		Page:   pageFrom(r),
	}
	if cs := q.Get("client_id"); cs != "" {
		cid, err := strconv.ParseUint(cs, 10, 64)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_client_id", nil)
			return
		}
		f.ClientID = uint(cid)
	}
	items, total, err := h.quotes.List(r.Context(), userID(r), f)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newList(items, total, f.Page))
}

func (h *QuoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	quote, err := h.quotes.Get(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.QuoteInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	quote, err := h.quotes.Create(r.Context(), userID(r), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, quote)
}

func (h *QuoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var in services.QuoteUpdate
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	quote, err := h.quotes.Update(r.Context(), userID(r), id, in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

func (h *QuoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.quotes.Delete(r.Context(), userID(r), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *QuoteHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var item pricing.LineItem
	if err := httpx.DecodeJSON(w, r, &item); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	quote, err := h.quotes.AddItem(r.Context(), userID(r), id, item)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, quote)
}

func (h *QuoteHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	itemID, err := idParam(r, "itemID")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var item pricing.LineItem
	if err := httpx.DecodeJSON(w, r, &item); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	quote, err := h.quotes.UpdateItem(r.Context(), userID(r), id, itemID, item)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

func (h *QuoteHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	itemID, err := idParam(r, "itemID")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	quote, err := h.quotes.RemoveItem(r.Context(), userID(r), id, itemID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

// Recompute re-resolves every item at the user's current rates.
func (h *QuoteHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	quote, err := h.quotes.Recompute(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

func (h *QuoteHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	b, name, err := h.exports.QuotePDF(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", name))
	_, _ = w.Write(b)
}

// Print renders the quote as a printable HTML page.
func (h *QuoteHandler) Print(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	doc, err := h.exports.Document(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	data := map[string]any{"Quote": doc.Quote, "Company": doc.Company}
	if err := view.Render(w, middleware.LangFrom(r), "quote_print.html", data); err != nil {
		writeError(w, r, h.log, err)
	}
}
