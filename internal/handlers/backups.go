package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/diewo77/go-quotes/httpx"
	"github.com/diewo77/go-quotes/internal/backup"
	"github.com/diewo77/go-quotes/internal/models"
	"github.com/diewo77/go-quotes/internal/services"
)

type BackupHandler struct {
	backups *services.BackupService
	log     zerolog.Logger
}

func NewBackupHandler(backups *services.BackupService, log zerolog.Logger) *BackupHandler {
	return &BackupHandler{backups: backups, log: log.With().Str("handler", "backups").Logger()}
}

func (h *BackupHandler) RegisterRoutes(r chi.Router) {
	r.Route("/backups", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}/download", h.Download)
		r.Post("/{id}/restore", h.Restore)
	})
}

type restoreResponse struct {
	Backup       string    `json:"backup"`
	CreatedAt    time.Time `json:"created_at"`
	Clients      int       `json:"clients"`
	Quotes       int       `json:"quotes"`
	Calculations int       `json:"calculations"`
	Rates        int       `json:"rates"`
}

func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.backups.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if items == nil {
		items = []models.Backup{}
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *BackupHandler) Create(w http.ResponseWriter, r *http.Request) {
	b, err := h.backups.Create(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, b)
}

// Download streams the encoded snapshot as stored.
func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request) {
	b, rc, err := h.backups.Open(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	defer rc.Close()

	contentType := "application/octet-stream"
	if f, err := backup.ParseFormat(b.Format); err == nil {
		contentType = f.ContentType()
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(b.Key)))
	if b.Size > 0 {
		w.Header().Set("Content-Length", fmt.Sprint(b.Size))
	}
	if _, err := io.Copy(w, rc); err != nil {
		h.log.Warn().Err(err).Str("backup_id", b.ID).Msg("Backup download interrupted")
	}
}

// Restore replaces the caller's data with the snapshot.
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := h.backups.Restore(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, restoreResponse{
		Backup:       id,
		CreatedAt:    snap.CreatedAt,
		Clients:      len(snap.Clients),
		Quotes:       len(snap.Quotes),
		Calculations: len(snap.Calculations),
		Rates:        len(snap.Rates),
	})
}
