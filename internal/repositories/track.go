package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

const trackColumns = `t.id, t.sequence, t.name, t.duration, t.file, t.artist_id, t.album_id, t.created_at, t.updated_at`

// TrackRepository implements models.Repository[*models.Track] for the track catalog.
//
// Tracks belong to an artist and an album; deleting either removes the track and its playlist memberships.
type TrackRepository struct {
	db DBTX
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db DBTX) *TrackRepository {
	return &TrackRepository{db: db}
}

// Create inserts a new [models.Track] into the database with generated ID and sequence
func (r *TrackRepository) Create(ctx context.Context, track *models.Track) error {
	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "tracks")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	track.SetID(shared.GenerateID())
	track.SetSequence(sequence)

	query := `
		INSERT INTO tracks (id, sequence, name, duration, file, artist_id, album_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		track.ID(),
		sequence,
		track.Name,
		track.Duration,
		track.File,
		track.ArtistID,
		track.AlbumID,
		track.CreatedAt(),
		track.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert track: %w", err)
	}

	return nil
}

// Get retrieves a track by ID
func (r *TrackRepository) Get(ctx context.Context, id string) (*models.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks t WHERE t.id = ?`
	return r.scan(r.db.QueryRowContext(ctx, query, id))
}

// Update modifies an existing track, refreshing its updated_at timestamp
func (r *TrackRepository) Update(ctx context.Context, track *models.Track) error {
	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()

	query := `
		UPDATE tracks
		SET name = ?, duration = ?, file = ?, album_id = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, track.Name, track.Duration, track.File, track.AlbumID, now, track.ID())
	if err != nil {
		return fmt.Errorf("failed to update track: %w", err)
	}

	if err := expectAffected(result, shared.ErrTrackNotFound, track.ID()); err != nil {
		return err
	}

	track.SetUpdatedAt(now)
	return nil
}

// Delete removes a track by ID; its playlist memberships are removed by cascade.
func (r *TrackRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tracks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}
	return expectAffected(result, shared.ErrTrackNotFound, id)
}

// List retrieves all tracks matching the given criteria ("artist_id", "album_id")
func (r *TrackRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks t WHERE 1 = 1`
	args := []any{}

	if artistID, ok := criteria["artist_id"].(string); ok && artistID != "" {
		query += " AND t.artist_id = ?"
		args = append(args, artistID)
	}

	if albumID, ok := criteria["album_id"].(string); ok && albumID != "" {
		query += " AND t.album_id = ?"
		args = append(args, albumID)
	}

	query += " ORDER BY t.sequence ASC"

	return r.query(ctx, query, args...)
}

// ListByPlaylist retrieves the member tracks of a playlist in insertion order
func (r *TrackRepository) ListByPlaylist(ctx context.Context, playlistID string) ([]*models.Track, error) {
	query := `
		SELECT ` + trackColumns + `
		FROM tracks t
		JOIN playlist_tracks pt ON pt.track_id = t.id
		WHERE pt.playlist_id = ?
		ORDER BY pt.position ASC
	`
	return r.query(ctx, query, playlistID)
}

func (r *TrackRepository) query(ctx context.Context, query string, args ...any) ([]*models.Track, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	tracks := []*models.Track{}
	for rows.Next() {
		track, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

// scan reads a single row into a [models.Track]
func (r *TrackRepository) scan(row scanner) (*models.Track, error) {
	var (
		id        string
		sequence  int
		createdAt time.Time
		updatedAt time.Time
		track     models.Track
	)

	err := row.Scan(&id, &sequence, &track.Name, &track.Duration, &track.File, &track.ArtistID, &track.AlbumID, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrTrackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}

	track.SetID(id)
	track.SetSequence(sequence)
	track.SetCreatedAt(createdAt)
	track.SetUpdatedAt(updatedAt)

	return &track, nil
}
