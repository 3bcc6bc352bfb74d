package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// Repositories bundles every repository bound to the same [DBTX].
type Repositories struct {
	Users          *UserRepository
	Albums         *AlbumRepository
	Tracks         *TrackRepository
	Playlists      *PlaylistRepository
	PlaylistTracks *PlaylistTrackRepository
}

// NewRepositories binds all repositories to q, which may be a pool or a transaction.
func NewRepositories(q DBTX) *Repositories {
	return &Repositories{
		Users:          NewUserRepository(q),
		Albums:         NewAlbumRepository(q),
		Tracks:         NewTrackRepository(q),
		Playlists:      NewPlaylistRepository(q),
		PlaylistTracks: NewPlaylistTrackRepository(q),
	}
}

// Store owns the database handle and hands out repositories.
type Store struct {
	db    *sql.DB
	repos *Repositories
}

// NewStore creates a [Store] over db.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, repos: NewRepositories(db)}
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

// Repos returns repositories bound to the connection pool (no transaction).
func (s *Store) Repos() *Repositories { return s.repos }

// WithTx runs fn with repositories bound to a single transaction.
//
// The transaction commits when fn returns nil and rolls back on error or panic.
// With a single-connection pool fn must only use the repositories it is given.
func (s *Store) WithTx(ctx context.Context, fn func(*Repositories) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(NewRepositories(tx)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
