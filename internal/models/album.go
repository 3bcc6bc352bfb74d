package models

import "fmt"

// Album groups an artist's tracks.
type Album struct {
	record
	Name     string
	ArtistID string
	ImageURL string
}

// NewAlbum creates an album owned by artistID.
func NewAlbum(sequence int, artistID, name string) *Album {
	return &Album{record: newRecord(sequence), ArtistID: artistID, Name: name}
}

// Validate checks required fields.
func (a *Album) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("album name is required")
	}
	if a.ArtistID == "" {
		return fmt.Errorf("album artist is required")
	}
	return nil
}
