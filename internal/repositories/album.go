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

const albumColumns = `id, sequence, name, artist_id, image_url, created_at, updated_at`

// AlbumRepository implements models.Repository[*models.Album].
type AlbumRepository struct {
	db DBTX
}

// NewAlbumRepository creates a new AlbumRepository with the given database connection
func NewAlbumRepository(db DBTX) *AlbumRepository {
	return &AlbumRepository{db: db}
}

// Create inserts a new album with generated ID and sequence
func (r *AlbumRepository) Create(ctx context.Context, album *models.Album) error {
	if err := album.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "albums")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	album.SetID(shared.GenerateID())
	album.SetSequence(sequence)

	query := `INSERT INTO albums (` + albumColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		album.ID(), sequence, album.Name, album.ArtistID, album.ImageURL, album.CreatedAt(), album.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert album: %w", err)
	}

	return nil
}

// Get retrieves an album by ID
func (r *AlbumRepository) Get(ctx context.Context, id string) (*models.Album, error) {
	query := `SELECT ` + albumColumns + ` FROM albums WHERE id = ?`
	return r.scan(r.db.QueryRowContext(ctx, query, id))
}

// Update modifies an existing album
func (r *AlbumRepository) Update(ctx context.Context, album *models.Album) error {
	if err := album.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE albums SET name = ?, image_url = ?, updated_at = ? WHERE id = ?`,
		album.Name, album.ImageURL, now, album.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update album: %w", err)
	}

	if err := expectAffected(result, shared.ErrAlbumNotFound, album.ID()); err != nil {
		return err
	}

	album.SetUpdatedAt(now)
	return nil
}

// Delete removes an album by ID; its tracks are removed by cascade.
func (r *AlbumRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM albums WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete album: %w", err)
	}
	return expectAffected(result, shared.ErrAlbumNotFound, id)
}

// List retrieves albums matching the given criteria ("artist_id", "name")
func (r *AlbumRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Album, error) {
	query := `SELECT ` + albumColumns + ` FROM albums WHERE 1 = 1`
	args := []any{}

	if artistID, ok := criteria["artist_id"].(string); ok && artistID != "" {
		query += " AND artist_id = ?"
		args = append(args, artistID)
	}

	if name, ok := criteria["name"].(string); ok && name != "" {
		query += " AND name = ?"
		args = append(args, name)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query albums: %w", err)
	}
	defer rows.Close()

	var albums []*models.Album
	for rows.Next() {
		album, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		albums = append(albums, album)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return albums, nil
}

func (r *AlbumRepository) scan(row scanner) (*models.Album, error) {
	var (
		id        string
		sequence  int
		createdAt time.Time
		updatedAt time.Time
		album     models.Album
	)

	err := row.Scan(&id, &sequence, &album.Name, &album.ArtistID, &album.ImageURL, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrAlbumNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan album: %w", err)
	}

	album.SetID(id)
	album.SetSequence(sequence)
	album.SetCreatedAt(createdAt)
	album.SetUpdatedAt(updatedAt)

	return &album, nil
}
