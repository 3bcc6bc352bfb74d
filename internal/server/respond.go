package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/mixtape/internal/forms"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
)

// Response messages
const (
	msgUnauthorized     = "Unauthorized"
	msgForbidden        = "Unauthorized access"
	msgValidation       = "Form validation errors"
	msgInternal         = "Internal server error"
	msgTooManyRequests  = "Too many requests"
	msgPlaylistNotFound = "Playlist couldn't be found"
	msgPlaylistMissing  = "Playlist not found"
	msgTrackNotFound    = "Track not found"
	msgUserNotFound     = "User not found"
	msgNotFound         = "Not found"
	msgDuplicateTrack   = "Track is already in the playlist"
	msgDeleted          = "Successfully Deleted"
	msgTrackAdded       = "Track added to playlist successfully"
	msgLoggedOut        = "User logged out"
	msgConflict         = "Conflict"
)

type messageBody struct {
	Message string            `json:"message"`
	Errors  forms.FieldErrors `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageBody{Message: message})
}

func writeValidation(w http.ResponseWriter, errs forms.FieldErrors) {
	writeJSON(w, http.StatusBadRequest, messageBody{Message: msgValidation, Errors: errs})
}

// errorMessages overrides the default body for route specific errors.
type errorMessages struct {
	playlistNotFound string
	conflict         string
}

// writeServiceError maps a service error to a status code and body. Unknown errors are logged and become a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *log.Logger, err error, msgs errorMessages) {
	if verr, ok := services.AsValidationError(err); ok {
		writeValidation(w, verr.Errors)
		return
	}

	switch {
	case errors.Is(err, shared.ErrUploadFailed):
		writeValidation(w, forms.FieldErrors{"image": {forms.MsgUploadFailed}})
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrInvalidSession):
		writeMessage(w, http.StatusUnauthorized, msgUnauthorized)
	case errors.Is(err, shared.ErrForbidden):
		writeMessage(w, http.StatusForbidden, msgForbidden)
	case errors.Is(err, shared.ErrPlaylistNotFound):
		writeMessage(w, http.StatusNotFound, orDefault(msgs.playlistNotFound, msgPlaylistNotFound))
	case errors.Is(err, shared.ErrTrackNotFound):
		writeMessage(w, http.StatusNotFound, msgTrackNotFound)
	case errors.Is(err, shared.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, msgUserNotFound)
	case errors.Is(err, shared.ErrNotFound):
		writeMessage(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, shared.ErrConflict):
		writeMessage(w, http.StatusBadRequest, orDefault(msgs.conflict, msgConflict))
	default:
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeMessage(w, http.StatusInternalServerError, msgInternal)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
