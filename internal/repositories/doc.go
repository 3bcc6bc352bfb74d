// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository handles CRUD operations with atomic sequence generation for stable, insertion-ordered listing.
// Repositories are bound to a [DBTX], so the same code runs on the connection pool or inside a transaction.
//
// Key Implementations:
//   - [UserRepository] : User account persistence with email-based lookups
//   - [AlbumRepository] : Artist albums
//   - [TrackRepository] : Track catalog, including playlist membership joins
//   - [PlaylistRepository] : User-owned playlists
//   - [PlaylistTrackRepository] : Association table managing playlist track membership
//
// [Store] owns the database handle and scopes a unit of work with [Store.WithTx]:
// acquire a transaction, operate on transaction-bound repositories, commit on success or roll back on error.
//
// Sequence numbers provide stable ordering (e.g., playlist #15) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
