// Package handlers exposes the services as a JSON API on a chi router.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/diewo77/go-quotes/auth"
	"github.com/diewo77/go-quotes/httpx"
	"github.com/diewo77/go-quotes/i18n"
	"github.com/diewo77/go-quotes/internal/backup"
	"github.com/diewo77/go-quotes/internal/middleware"
	"github.com/diewo77/go-quotes/internal/pricing"
	"github.com/diewo77/go-quotes/internal/services"
)

// validationDetails is the 422 payload: codes for clients, messages for humans.
type validationDetails struct {
	Fields   map[string]string `json:"fields"`
	Messages map[string]string `json:"messages"`
}

// statusFor maps service errors onto HTTP statuses and stable error codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, backup.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusUnprocessableEntity, "validation_failed"
	case errors.Is(err, httpx.ErrBadRequest):
		return http.StatusBadRequest, "invalid_json"
	case errors.Is(err, pricing.ErrInvalidPeriod):
		return http.StatusBadRequest, "invalid_period"
	case errors.Is(err, pricing.ErrUnknownCurrency):
		return http.StatusBadRequest, "unknown_currency"
	case errors.Is(err, services.ErrQuoteLocked):
		return http.StatusConflict, "quote_locked"
	case errors.Is(err, services.ErrClientInUse):
		return http.StatusConflict, "client_in_use"
	case errors.Is(err, services.ErrEmailTaken):
		return http.StatusConflict, "email_taken"
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, services.ErrBackupMismatch):
		return http.StatusForbidden, "backup_user_mismatch"
	case errors.Is(err, services.ErrBackupCorrupt):
		return http.StatusUnprocessableEntity, "backup_corrupt"
	}
	return http.StatusInternalServerError, "internal_error"
}

func writeError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	}
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		httpx.JSONError(w, status, code, validationDetails{
			Fields:   verr.Violations,
			Messages: i18n.Messages(middleware.LangFrom(r), verr.Violations),
		})
		return
	}
	httpx.JSONError(w, status, code, nil)
}

// userID is only called behind auth.RequireAuth.
func userID(r *http.Request) uint {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}

// idParam parses a positive numeric URL parameter. A bad value is reported as
// not found, like an id that does not exist.
func idParam(r *http.Request, name string) (uint, error) {
	v, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || v == 0 {
		return 0, services.ErrNotFound
	}
	return uint(v), nil
}

func pageFrom(r *http.Request) services.Page {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	return services.Page{Page: page, PerPage: perPage}
}

// listResponse wraps a page of results with the total count.
type listResponse[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
}

func newList[T any](items []T, total int64, p services.Page) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	p = p.Normalize()
	return listResponse[T]{Items: items, Total: total, Page: p.Page, PerPage: p.PerPage}
}

// periodFrom reads granularity, year and month from the query.
// Missing values default to the current month. ok is false when no
// granularity was given and allowAll is set.
func periodFrom(r *http.Request, now time.Time, allowAll bool) (pricing.Period, bool, error) {
	q := r.URL.Query()
	gs := q.Get("granularity")
	if gs == "" {
		if allowAll {
			return pricing.Period{}, false, nil
		}
		gs = string(pricing.ByMonth)
	}
	g, err := pricing.ParseGranularity(gs)
	if err != nil {
		return pricing.Period{}, false, err
	}
	year := now.Year()
	if ys := q.Get("year"); ys != "" {
		if year, err = strconv.Atoi(ys); err != nil {
			return pricing.Period{}, false, pricing.ErrInvalidPeriod
		}
	}
	month := now.Month()
	if ms := q.Get("month"); ms != "" {
		m, err := strconv.Atoi(ms)
		if err != nil {
			return pricing.Period{}, false, pricing.ErrInvalidPeriod
		}
		month = time.Month(m)
	}
	p, err := pricing.NewPeriod(g, year, month)
	return p, err == nil, err
}
