package server

import (
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/mixtape/internal/auth"
	"github.com/desertthunder/mixtape/internal/forms"
	"github.com/desertthunder/mixtape/internal/services"
)

// PlaylistHandler serves the playlist namespace under /api/playlists.
//
// Every route expects an authenticated caller; mount it behind [RequireAuth].
type PlaylistHandler struct {
	mux       *http.ServeMux
	playlists *services.PlaylistService
	forms     *forms.Decoder
	logger    *log.Logger
}

// NewPlaylistHandler creates a [PlaylistHandler].
func NewPlaylistHandler(playlists *services.PlaylistService, decoder *forms.Decoder, logger *log.Logger) *PlaylistHandler {
	h := &PlaylistHandler{mux: http.NewServeMux(), playlists: playlists, forms: decoder, logger: logger}

	h.mux.HandleFunc("GET /api/playlists/current", h.current)
	h.mux.HandleFunc("GET /api/playlists/{id}", h.get)
	h.mux.HandleFunc("PUT /api/playlists/{id}", h.update)
	h.mux.HandleFunc("DELETE /api/playlists/{id}", h.delete)
	h.mux.HandleFunc("POST /api/playlists/new", h.create)
	h.mux.HandleFunc("POST /api/playlists/{id}/add-a-track", h.addTrack)

	return h
}

// Routes returns the HTTP routes this handler serves.
func (h *PlaylistHandler) Routes() []string {
	return []string{"/api/playlists/"}
}

func (h *PlaylistHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *PlaylistHandler) current(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserID(r.Context())

	playlists, err := h.playlists.ListForUser(r.Context(), callerID)
	if err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"playlists": playlists})
}

func (h *PlaylistHandler) get(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.playlists.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"playlist": playlist})
}

func (h *PlaylistHandler) update(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserID(r.Context())
	form := h.forms.Playlist(r, false)

	playlist, err := h.playlists.Update(r.Context(), callerID, r.PathValue("id"), form)
	if err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{})
		return
	}

	writeJSON(w, http.StatusCreated, playlist)
}

func (h *PlaylistHandler) delete(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserID(r.Context())

	if err := h.playlists.Delete(r.Context(), callerID, r.PathValue("id")); err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{})
		return
	}

	writeMessage(w, http.StatusOK, msgDeleted)
}

func (h *PlaylistHandler) create(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserID(r.Context())
	form := h.forms.Playlist(r, true)

	playlist, err := h.playlists.Create(r.Context(), callerID, form)
	if err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{})
		return
	}

	writeJSON(w, http.StatusCreated, playlist)
}

func (h *PlaylistHandler) addTrack(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserID(r.Context())
	form := h.forms.PlaylistTrack(r)

	err := h.playlists.AddTrack(r.Context(), callerID, r.PathValue("id"), form)
	if err != nil {
		writeServiceError(w, r, h.logger, err, errorMessages{
			playlistNotFound: msgPlaylistMissing,
			conflict:         msgDuplicateTrack,
		})
		return
	}

	writeMessage(w, http.StatusCreated, msgTrackAdded)
}
