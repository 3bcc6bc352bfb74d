// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI browses one user's library:
//  1. [PlaylistListView] : Browse the user's playlists
//  2. [TrackListView] : Inspect a playlist's tracks in order
//  3. [ConfirmView] : Confirm deleting the selected playlist
//  4. [ResultView] : Show the outcome of the deletion
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Data comes from a [Library], which the playlist service satisfies.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, d, y/n, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
