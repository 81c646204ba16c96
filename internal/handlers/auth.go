package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/diewo77/go-quotes/auth"
	"github.com/diewo77/go-quotes/httpx"
	"github.com/diewo77/go-quotes/internal/models"
	"github.com/diewo77/go-quotes/internal/services"
)

type AuthHandler struct {
	users  *services.UserService
	tokens *auth.TokenManager
	log    zerolog.Logger
}

func NewAuthHandler(users *services.UserService, tokens *auth.TokenManager, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		tokens: tokens,
		log:    log.With().Str("handler", "auth").Logger(),
	}
}

// RegisterRoutes mounts the public authentication endpoints.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Post("/api/token", h.Token)
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in services.Signup
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	u, err := h.users.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	h.log.Info().Uint("user_id", u.ID).Msg("User registered")
	auth.CreateSession(w, u.ID)
	httpx.JSON(w, http.StatusCreated, u)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	u, err := h.users.Authenticate(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	auth.CreateSession(w, u.ID)
	httpx.JSON(w, http.StatusOK, u)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	auth.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

// Token exchanges credentials for a bearer token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	u, err := h.users.Authenticate(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	token, exp, err := h.tokens.Issue(u.ID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tokenResponse{Token: token, ExpiresAt: exp, User: u})
}
