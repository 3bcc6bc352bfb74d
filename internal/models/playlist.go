package models

import (
	"fmt"
	"unicode/utf8"
)

// MaxPlaylistNameLength is the longest playlist name accepted, in characters.
const MaxPlaylistNameLength = 255

// Playlist is a named collection of tracks, ordered by insertion and owned by one user.
type Playlist struct {
	record
	Name     string
	UserID   string
	ImageURL string
	Private  bool
}

// PlaylistSummary is the playlist payload without tracks, returned when a playlist is created.
type PlaylistSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	UserID   string `json:"userId"`
	ImageURL string `json:"imageUrl"`
	Private  bool   `json:"private"`
}

// PlaylistDetail is the playlist payload with its tracks, returned by the read and update paths.
type PlaylistDetail struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	UserID   string     `json:"userId"`
	ImageURL string     `json:"imageUrl"`
	Private  bool       `json:"private"`
	Tracks   []TrackDTO `json:"tracks"`
}

// NewPlaylist creates a playlist owned by userID.
func NewPlaylist(sequence int, userID, name string, private bool) *Playlist {
	return &Playlist{record: newRecord(sequence), UserID: userID, Name: name, Private: private}
}

// Validate checks required fields.
func (p *Playlist) Validate() error {
	switch {
	case p.Name == "":
		return fmt.Errorf("playlist name is required")
	case utf8.RuneCountInString(p.Name) > MaxPlaylistNameLength:
		return fmt.Errorf("playlist name exceeds %d characters", MaxPlaylistNameLength)
	case p.UserID == "":
		return fmt.Errorf("playlist owner is required")
	}
	return nil
}

// OwnedBy reports whether userID owns the playlist.
func (p *Playlist) OwnedBy(userID string) bool {
	return userID != "" && p.UserID == userID
}

// Summary returns the payload without tracks.
func (p *Playlist) Summary() PlaylistSummary {
	return PlaylistSummary{
		ID:       p.ID(),
		Name:     p.Name,
		UserID:   p.UserID,
		ImageURL: p.ImageURL,
		Private:  p.Private,
	}
}

// Detail returns the payload with the given tracks in order.
func (p *Playlist) Detail(tracks []*Track) PlaylistDetail {
	return PlaylistDetail{
		ID:       p.ID(),
		Name:     p.Name,
		UserID:   p.UserID,
		ImageURL: p.ImageURL,
		Private:  p.Private,
		Tracks:   TrackDTOs(tracks),
	}
}
