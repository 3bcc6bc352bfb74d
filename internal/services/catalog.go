package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/repositories"
	"github.com/desertthunder/mixtape/internal/shared"
)

// NewTrack describes a track to add to the catalog.
type NewTrack struct {
	ArtistEmail string
	Album       string
	Name        string
	Duration    int
	File        string
}

// CatalogService seeds and lists the track catalog.
type CatalogService struct {
	store  *repositories.Store
	logger *log.Logger
}

// NewCatalogService creates a [CatalogService].
func NewCatalogService(store *repositories.Store, logger *log.Logger) *CatalogService {
	return &CatalogService{store: store, logger: logger}
}

// AddTrack creates a track, creating the artist's album on first use.
// The artist must already exist and is marked as an artist.
func (s *CatalogService) AddTrack(ctx context.Context, in NewTrack) (*models.TrackDTO, error) {
	if in.Name == "" || in.Album == "" || in.File == "" {
		return nil, fmt.Errorf("%w: track name, album and file are required", shared.ErrMissingArgument)
	}
	if utf8.RuneCountInString(in.Name) > models.MaxTrackNameLength {
		return nil, fmt.Errorf("%w: track name exceeds %d characters", shared.ErrInvalidArgument, models.MaxTrackNameLength)
	}
	if in.Duration <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", shared.ErrInvalidArgument)
	}

	var track *models.Track
	err := s.store.WithTx(ctx, func(repos *repositories.Repositories) error {
		artist, err := repos.Users.GetByEmail(ctx, strings.ToLower(in.ArtistEmail))
		if err != nil {
			return err
		}

		if !artist.IsArtist {
			artist.IsArtist = true
			if err := repos.Users.Update(ctx, artist); err != nil {
				return err
			}
		}

		album, err := s.album(ctx, repos, artist.ID(), in.Album)
		if err != nil {
			return err
		}

		track = models.NewTrack(0, artist.ID(), album.ID(), in.Name, in.Duration, in.File)
		return repos.Tracks.Create(ctx, track)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("added track", "id", track.ID(), "name", track.Name)
	dto := track.ToDTO()
	return &dto, nil
}

// Tracks lists the catalog, optionally for one artist.
func (s *CatalogService) Tracks(ctx context.Context, artistID string) ([]models.TrackDTO, error) {
	tracks, err := s.store.Repos().Tracks.List(ctx, map[string]any{"artist_id": artistID})
	if err != nil {
		return nil, err
	}
	return models.TrackDTOs(tracks), nil
}

func (s *CatalogService) album(ctx context.Context, repos *repositories.Repositories, artistID, name string) (*models.Album, error) {
	albums, err := repos.Albums.List(ctx, map[string]any{"artist_id": artistID, "name": name})
	if err != nil {
		return nil, err
	}
	if len(albums) > 0 {
		return albums[0], nil
	}

	album := models.NewAlbum(0, artistID, name)
	if err := repos.Albums.Create(ctx, album); err != nil {
		return nil, err
	}
	return album, nil
}
