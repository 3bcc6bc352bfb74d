package models

import (
	"fmt"
	"unicode/utf8"
)

// MaxTrackNameLength is the longest track name accepted, in characters.
const MaxTrackNameLength = 40

// Track is a single audio asset owned by an artist and belonging to an album.
type Track struct {
	record
	Name     string
	Duration int // Duration in seconds
	File     string
	ArtistID string
	AlbumID  string
}

// TrackDTO is the JSON representation of a [Track].
type TrackDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Duration int    `json:"duration"`
	File     string `json:"file"`
	ArtistID string `json:"artistId"`
	AlbumID  string `json:"albumId"`
}

// NewTrack creates a track for the given artist and album.
func NewTrack(sequence int, artistID, albumID, name string, duration int, file string) *Track {
	return &Track{
		record:   newRecord(sequence),
		Name:     name,
		Duration: duration,
		File:     file,
		ArtistID: artistID,
		AlbumID:  albumID,
	}
}

// Validate checks required fields. A track always references an artist and an album.
func (t *Track) Validate() error {
	switch {
	case t.Name == "":
		return fmt.Errorf("track name is required")
	case utf8.RuneCountInString(t.Name) > MaxTrackNameLength:
		return fmt.Errorf("track name exceeds %d characters", MaxTrackNameLength)
	case t.Duration <= 0:
		return fmt.Errorf("track duration must be positive")
	case t.File == "":
		return fmt.Errorf("track file is required")
	case t.ArtistID == "":
		return fmt.Errorf("track artist is required")
	case t.AlbumID == "":
		return fmt.Errorf("track album is required")
	}
	return nil
}

// ToDTO converts the track to its JSON representation.
func (t *Track) ToDTO() TrackDTO {
	return TrackDTO{
		ID:       t.ID(),
		Name:     t.Name,
		Duration: t.Duration,
		File:     t.File,
		ArtistID: t.ArtistID,
		AlbumID:  t.AlbumID,
	}
}

// TrackDTOs converts tracks, always returning a non-nil slice so it encodes as [].
func TrackDTOs(tracks []*Track) []TrackDTO {
	dtos := make([]TrackDTO, 0, len(tracks))
	for _, t := range tracks {
		dtos = append(dtos, t.ToDTO())
	}
	return dtos
}
