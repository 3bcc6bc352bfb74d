package server

import (
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/mixtape/internal/auth"
	"github.com/desertthunder/mixtape/internal/forms"
	"github.com/desertthunder/mixtape/internal/services"
)

// AuthHandler serves session endpoints under /api/auth.
type AuthHandler struct {
	mux      *http.ServeMux
	accounts *services.AccountService
	sessions *auth.Manager
	forms    *forms.Decoder
	logger   *log.Logger
}

// NewAuthHandler creates an [AuthHandler].
func NewAuthHandler(accounts *services.AccountService, sessions *auth.Manager, decoder *forms.Decoder, logger *log.Logger) *AuthHandler {
	h := &AuthHandler{mux: http.NewServeMux(), accounts: accounts, sessions: sessions, forms: decoder, logger: logger}

	h.mux.HandleFunc("GET /api/auth/{$}", h.current)
	h.mux.HandleFunc("GET /api/auth/csrf/restore", h.restoreCSRF)
	h.mux.HandleFunc("POST /api/auth/signup", h.signup)
	h.mux.HandleFunc("POST /api/auth/login", h.login)
	h.mux.HandleFunc("POST /api/auth/logout", h.logout)

	return h
}

// Routes returns the HTTP routes this handler serves.
func (h *AuthHandler) Routes() []string {
	return []string{"/api/auth/"}
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// current returns the authenticated user.
func (h *AuthHandler) current(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	user, err := h.accounts.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// restoreCSRF issues a fresh CSRF cookie.
func (h *AuthHandler) restoreCSRF(w http.ResponseWriter, r *http.Request) {
	token := h.sessions.SetCSRF(w)
	writeJSON(w, http.StatusOK, map[string]string{"csrf_token": token})
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.Signup(r.Context(), h.forms.Signup(r))
	if err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{})
		return
	}

	if err := h.sessions.SetSession(w, user.ID); err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{})
		return
	}
	h.sessions.SetCSRF(w)
	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.Login(r.Context(), h.forms.Login(r))
	if err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{})
		return
	}

	if err := h.sessions.SetSession(w, user.ID); err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{})
		return
	}
	h.sessions.SetCSRF(w)
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearSession(w)
	writeMessage(w, http.StatusOK, msgLoggedOut)
}
