package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/diewo77/go-quotes/httpx"
	"github.com/diewo77/go-quotes/internal/services"
)

type ClientHandler struct {
	clients *services.ClientService
	log     zerolog.Logger
}

func NewClientHandler(clients *services.ClientService, log zerolog.Logger) *ClientHandler {
	return &ClientHandler{clients: clients, log: log.With().Str("handler", "clients").Logger()}
}

func (h *ClientHandler) RegisterRoutes(r chi.Router) {
	r.Route("/clients", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	f := services.ClientFilter{Search: r.URL.Query().Get("q"), Page: pageFrom(r)}
	items, total, err := h.clients.List(r.Context(), userID(r), f)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newList(items, total, f.Page))
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	c, err := h.clients.Get(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ClientInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	c, err := h.clients.Create(r.Context(), userID(r), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var in services.ClientInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	c, err := h.clients.Update(r.Context(), userID(r), id, in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.clients.Delete(r.Context(), userID(r), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
