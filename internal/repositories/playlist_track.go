package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

// PlaylistTrackRepository manages rows of the playlist_tracks association table.
//
// The table carries UNIQUE(playlist_id, track_id): a track appears at most once per playlist,
// and a concurrent duplicate insert fails with [shared.ErrConflict] rather than creating a second row.
type PlaylistTrackRepository struct {
	db DBTX
}

// NewPlaylistTrackRepository creates a new PlaylistTrackRepository with the given database connection
func NewPlaylistTrackRepository(db DBTX) *PlaylistTrackRepository {
	return &PlaylistTrackRepository{db: db}
}

// Add appends the track to the end of the playlist, setting pt.Position.
func (r *PlaylistTrackRepository) Add(ctx context.Context, pt *models.PlaylistTrack) error {
	if err := pt.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO playlist_tracks (playlist_id, track_id, position, created_at)
		SELECT ?, ?, COALESCE(MAX(position), 0) + 1, ?
		FROM playlist_tracks
		WHERE playlist_id = ?
		RETURNING position
	`

	err := r.db.QueryRowContext(ctx, query, pt.PlaylistID, pt.TrackID, pt.AddedAt, pt.PlaylistID).Scan(&pt.Position)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: track %s is already in playlist %s", shared.ErrConflict, pt.TrackID, pt.PlaylistID)
		}
		return fmt.Errorf("failed to add track to playlist: %w", err)
	}

	return nil
}

// Remove deletes the association between a playlist and a track
func (r *PlaylistTrackRepository) Remove(ctx context.Context, playlistID, trackID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?`, playlistID, trackID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove track from playlist: %w", err)
	}
	return expectAffected(result, shared.ErrTrackNotFound, trackID)
}

// Exists reports whether the track is a member of the playlist
func (r *PlaylistTrackRepository) Exists(ctx context.Context, playlistID, trackID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?)`, playlistID, trackID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check playlist membership: %w", err)
	}
	return exists, nil
}

// Count returns the number of association rows for a playlist
func (r *PlaylistTrackRepository) Count(ctx context.Context, playlistID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM playlist_tracks WHERE playlist_id = ?`, playlistID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count playlist tracks: %w", err)
	}
	return count, nil
}

// List returns the association rows of a playlist in insertion order
func (r *PlaylistTrackRepository) List(ctx context.Context, playlistID string) ([]*models.PlaylistTrack, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT playlist_id, track_id, position, created_at
		FROM playlist_tracks
		WHERE playlist_id = ?
		ORDER BY position ASC
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist tracks: %w", err)
	}
	defer rows.Close()

	entries := []*models.PlaylistTrack{}
	for rows.Next() {
		var (
			pt      models.PlaylistTrack
			addedAt time.Time
		)
		if err := rows.Scan(&pt.PlaylistID, &pt.TrackID, &pt.Position, &addedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist track: %w", err)
		}
		pt.AddedAt = addedAt
		entries = append(entries, &pt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}
