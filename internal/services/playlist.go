package services

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/mixtape/internal/forms"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/repositories"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/desertthunder/mixtape/internal/storage"
)

// PlaylistService implements playlist reads, mutations and membership.
type PlaylistService struct {
	store   *repositories.Store
	storage storage.Storage
	logger  *log.Logger

	// legacyUploadErrors ignores upload errors and fails later on the missing URL.
	legacyUploadErrors bool
}

// PlaylistOption configures a [PlaylistService].
type PlaylistOption func(*PlaylistService)

// WithLegacyUploadErrors selects the historical upload failure behavior: the upload error is
// not reported as such and the request fails with [ErrMissingUploadURL] instead.
func WithLegacyUploadErrors(enabled bool) PlaylistOption {
	return func(s *PlaylistService) { s.legacyUploadErrors = enabled }
}

// NewPlaylistService creates a [PlaylistService].
func NewPlaylistService(store *repositories.Store, files storage.Storage, logger *log.Logger, opts ...PlaylistOption) *PlaylistService {
	s := &PlaylistService{store: store, storage: files, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListForUser returns every playlist owned by callerID with its tracks.
func (s *PlaylistService) ListForUser(ctx context.Context, callerID string) ([]models.PlaylistDetail, error) {
	if callerID == "" {
		return nil, shared.ErrNotAuthenticated
	}

	repos := s.store.Repos()
	playlists, err := repos.Playlists.List(ctx, map[string]any{"user_id": callerID})
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}

	details := make([]models.PlaylistDetail, 0, len(playlists))
	for _, p := range playlists {
		tracks, err := repos.Tracks.ListByPlaylist(ctx, p.ID())
		if err != nil {
			return nil, fmt.Errorf("failed to list tracks for playlist %s: %w", p.ID(), err)
		}
		details = append(details, p.Detail(tracks))
	}
	return details, nil
}

// Get returns a playlist with its tracks. Any authenticated caller may read any playlist.
func (s *PlaylistService) Get(ctx context.Context, id string) (*models.PlaylistDetail, error) {
	repos := s.store.Repos()

	playlist, err := repos.Playlists.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	tracks, err := repos.Tracks.ListByPlaylist(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks for playlist %s: %w", id, err)
	}

	detail := playlist.Detail(tracks)
	return &detail, nil
}

// Update renames the playlist, sets its visibility and optionally replaces its image.
func (s *PlaylistService) Update(ctx context.Context, callerID, id string, form forms.Result[forms.PlaylistForm]) (*models.PlaylistDetail, error) {
	playlist, err := s.owned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	if !form.Valid() {
		return nil, &ValidationError{Errors: form.Errors()}
	}
	data := form.Data()

	previousURL := playlist.ImageURL
	uploadedURL := ""
	if data.Image != nil {
		if uploadedURL, err = s.upload(ctx, data.Image); err != nil {
			return nil, err
		}
		playlist.ImageURL = uploadedURL
	}

	playlist.Name = data.Name
	playlist.Private = data.Private

	var detail models.PlaylistDetail
	err = s.store.WithTx(ctx, func(repos *repositories.Repositories) error {
		if err := repos.Playlists.Update(ctx, playlist); err != nil {
			return err
		}
		tracks, err := repos.Tracks.ListByPlaylist(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to list tracks for playlist %s: %w", id, err)
		}
		detail = playlist.Detail(tracks)
		return nil
	})
	if err != nil {
		if uploadedURL != "" {
			s.discard(ctx, uploadedURL)
		}
		return nil, err
	}

	if uploadedURL != "" && previousURL != "" && previousURL != uploadedURL {
		s.discard(ctx, previousURL)
	}

	s.logger.Info("updated playlist", "id", id, "user", callerID)
	return &detail, nil
}

// Delete removes the playlist image and then the playlist. Association rows go with it.
func (s *PlaylistService) Delete(ctx context.Context, callerID, id string) error {
	playlist, err := s.owned(ctx, callerID, id)
	if err != nil {
		return err
	}

	if playlist.ImageURL != "" {
		s.discard(ctx, playlist.ImageURL)
	}

	if err := s.store.Repos().Playlists.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete playlist %s: %w", id, err)
	}

	s.logger.Info("deleted playlist", "id", id, "user", callerID)
	return nil
}

// Create uploads the cover image and creates a playlist owned by callerID.
func (s *PlaylistService) Create(ctx context.Context, callerID string, form forms.Result[forms.PlaylistForm]) (*models.PlaylistSummary, error) {
	if callerID == "" {
		return nil, shared.ErrNotAuthenticated
	}

	if _, err := s.store.Repos().Users.Get(ctx, callerID); err != nil {
		return nil, err
	}

	if !form.Valid() {
		return nil, &ValidationError{Errors: form.Errors()}
	}
	data := form.Data()

	if data.Image == nil {
		return nil, NewValidationError("image", forms.MsgRequired)
	}

	url, err := s.upload(ctx, data.Image)
	if err != nil {
		return nil, err
	}

	playlist := models.NewPlaylist(0, callerID, data.Name, data.Private)
	playlist.ImageURL = url

	if err := s.store.Repos().Playlists.Create(ctx, playlist); err != nil {
		s.discard(ctx, url)
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}

	s.logger.Info("created playlist", "id", playlist.ID(), "user", callerID)
	summary := playlist.Summary()
	return &summary, nil
}

// AddTrack appends a track to the playlist in a single transaction.
func (s *PlaylistService) AddTrack(ctx context.Context, callerID, id string, form forms.Result[forms.PlaylistTrackForm]) error {
	err := s.store.WithTx(ctx, func(repos *repositories.Repositories) error {
		playlist, err := repos.Playlists.Get(ctx, id)
		if err != nil {
			return err
		}
		if !playlist.OwnedBy(callerID) {
			return fmt.Errorf("%w: playlist %s", shared.ErrForbidden, id)
		}

		if !form.Valid() {
			return &ValidationError{Errors: form.Errors()}
		}
		trackID := form.Data().TrackID

		if _, err := repos.Tracks.Get(ctx, trackID); err != nil {
			return err
		}

		exists, err := repos.PlaylistTracks.Exists(ctx, id, trackID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: track %s is already in playlist %s", shared.ErrConflict, trackID, id)
		}

		return repos.PlaylistTracks.Add(ctx, models.NewPlaylistTrack(id, trackID))
	})
	if err != nil {
		return err
	}

	s.logger.Info("added track to playlist", "playlist", id, "user", callerID)
	return nil
}

// owned loads a playlist and checks callerID owns it.
func (s *PlaylistService) owned(ctx context.Context, callerID, id string) (*models.Playlist, error) {
	playlist, err := s.store.Repos().Playlists.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !playlist.OwnedBy(callerID) {
		return nil, fmt.Errorf("%w: playlist %s", shared.ErrForbidden, id)
	}
	return playlist, nil
}

// upload stores an image under a unique name and returns its URL.
func (s *PlaylistService) upload(ctx context.Context, image *forms.File) (string, error) {
	name := shared.UniqueFilename(image.Name)
	url, err := s.storage.Upload(ctx, name, image.Reader())

	if s.legacyUploadErrors {
		if url == "" {
			return "", fmt.Errorf("%w: %s", ErrMissingUploadURL, name)
		}
		return url, nil
	}

	if err != nil {
		s.logger.Warn("image upload failed", "file", name, "err", err)
		return "", fmt.Errorf("%w: %s", shared.ErrUploadFailed, name)
	}
	if url == "" {
		s.logger.Warn("image upload returned no url", "file", name)
		return "", fmt.Errorf("%w: %s", shared.ErrUploadFailed, name)
	}
	return url, nil
}

// discard removes a blob, logging failures.
func (s *PlaylistService) discard(ctx context.Context, url string) {
	if err := s.storage.Remove(ctx, url); err != nil {
		s.logger.Warn("failed to remove image", "url", url, "err", err)
	}
}
