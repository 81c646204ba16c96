package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/diewo77/go-quotes/internal/pricing"
	"github.com/diewo77/go-quotes/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	exports *services.ExportService
	log     zerolog.Logger
	now     func() time.Time
}

func NewExportHandler(exports *services.ExportService, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{exports: exports, log: log.With().Str("handler", "export").Logger(), now: time.Now}
}

func (h *ExportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/export/quotes.xlsx", h.QuotesExcel)
}

// QuotesExcel exports every quote, or one period when granularity is given.
func (h *ExportHandler) QuotesExcel(w http.ResponseWriter, r *http.Request) {
	p, ok, err := periodFrom(r, h.now(), true)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var period *pricing.Period
	name := "quotes.xlsx"
	if ok {
		period = &p
		name = fmt.Sprintf("quotes-%s.xlsx", p)
	}
	b, err := h.exports.QuotesExcel(r.Context(), userID(r), period)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(b)
}
