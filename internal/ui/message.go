package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/mixtape/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlaylistsFetched MsgKind = iota
	MsgTracksFetched
	MsgPlaylistDeleted
)

type playlistsPayload struct {
	playlists []models.PlaylistDetail
	err       error
}

type tracksPayload struct {
	playlist *models.PlaylistDetail
	err      error
}

type deletedPayload struct {
	name string
	err  error
}

// playlistsFetchedMsg is the constructor for [MsgPlaylistsFetched]
func playlistsFetchedMsg(playlists []models.PlaylistDetail, err error) Msg {
	return Msg{kind: MsgPlaylistsFetched, data: playlistsPayload{playlists, err}}
}

// tracksFetchedMsg is the constructor for [MsgTracksFetched]
func tracksFetchedMsg(playlist *models.PlaylistDetail, err error) Msg {
	return Msg{kind: MsgTracksFetched, data: tracksPayload{playlist, err}}
}

// playlistDeletedMsg is the constructor for [MsgPlaylistDeleted]
func playlistDeletedMsg(name string, err error) Msg {
	return Msg{kind: MsgPlaylistDeleted, data: deletedPayload{name, err}}
}
