// Package models defines domain entities and persistence interfaces for the mixtape playlist service.
//
// The package contains two categories of types:
//
// 1. Persistent Entities: Database-backed models with full lifecycle management
//   - [User] : Listener and artist accounts
//   - [Album] : Artist albums that group tracks
//   - [Track] : A single audio asset owned by an artist and album
//   - [Playlist] : A named, user-owned collection of tracks
//   - [PlaylistTrack] : Association row linking one track to one playlist
//
// 2. Response Shapes: JSON payloads returned by the HTTP API
//   - [TrackDTO] : Serialized track
//   - [PlaylistSummary] : Playlist without tracks (create path)
//   - [PlaylistDetail] : Playlist with nested tracks (read & update paths)
//   - [UserDTO] : Serialized user without credentials
//
// All persistent entities implement the [Model] interface providing identifiers, timestamps and validation.
// The [Repository] interface defines standard CRUD operations for database access.
package models
