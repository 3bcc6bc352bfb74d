package models

import (
	"fmt"
	"time"
)

// PlaylistTrack is an association row: the sole representation of a track's membership in a playlist.
//
// Position records insertion order within the playlist.
type PlaylistTrack struct {
	PlaylistID string
	TrackID    string
	Position   int
	AddedAt    time.Time
}

// NewPlaylistTrack creates an association row stamped with the current time.
func NewPlaylistTrack(playlistID, trackID string) *PlaylistTrack {
	return &PlaylistTrack{PlaylistID: playlistID, TrackID: trackID, AddedAt: time.Now().UTC()}
}

// Validate checks both sides of the association are set.
func (pt *PlaylistTrack) Validate() error {
	if pt.PlaylistID == "" {
		return fmt.Errorf("playlist id is required")
	}
	if pt.TrackID == "" {
		return fmt.Errorf("track id is required")
	}
	return nil
}
