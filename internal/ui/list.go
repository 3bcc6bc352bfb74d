package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = trackItem{}
)

// playlistItem wraps [models.PlaylistDetail] to implement [list.Item].
type playlistItem struct {
	playlist models.PlaylistDetail
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string {
	return fmt.Sprintf("%d tracks • %s", len(i.playlist.Tracks), shared.VisibilityString(i.playlist.Private))
}

// trackItem wraps [models.TrackDTO] to implement [list.Item].
type trackItem struct {
	position int
	track    models.TrackDTO
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string       { return fmt.Sprintf("%d. %s", i.position, i.track.Name) }
func (i trackItem) Description() string {
	desc := shared.FormatDuration(i.track.Duration)
	if i.track.File != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.File)
	}
	return desc
}
