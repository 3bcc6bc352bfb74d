// Package services implements the playlist and account use cases on top of the repositories.
//
// # Playlist Service
//
// [PlaylistService] owns the playlist lifecycle and membership rules. Every mutating operation checks,
// in order: the playlist exists, the caller owns it, the submitted form is valid. Adding a track then
// checks the track exists and is not already a member.
//
// Forms arrive already decoded as [forms.Result] values; the service only looks at them after the
// existence and ownership checks so a non-owner learns nothing about validation.
//
// # Storage
//
// Cover images go to a [storage.Storage]. Uploads happen before the database write; if the write fails,
// the new blob is removed again. Replacing or deleting a playlist removes the previous blob. Storage
// removal failures are logged and never fail the request.
//
// # Error Handling
//
// Services return sentinel errors from the shared package, wrapped with context:
//   - [shared.ErrPlaylistNotFound], [shared.ErrTrackNotFound], [shared.ErrUserNotFound]: wrap [shared.ErrNotFound]
//   - [shared.ErrForbidden]: caller does not own the playlist
//   - [shared.ErrConflict]: track already in the playlist
//   - [shared.ErrUploadFailed]: storage produced no URL
//   - [*ValidationError]: field errors from a rejected form
package services
