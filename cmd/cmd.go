// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// app builds the root command.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:     "mixtape",
		Usage:    "Playlist and track library service",
		Version:  "0.1.0",
		Flags:    []cli.Flag{verboseFlag()},
		Before:   r.before,
		Commands: r.register(),
	}
}

func verboseFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "verbose",
		Usage: "Enable debug logging",
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
	}
}

// serveCommand runs the HTTP API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the playlist HTTP API",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Serve,
	}
}

// setupCommand handles setup operations for the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.RollbackDatabase,
			},
		},
	}
}

// usersCommand manages accounts.
func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Manage user accounts",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Create a user account",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{Name: "name", Usage: "Display name", Required: true},
					&cli.StringFlag{Name: "email", Usage: "Login email", Required: true},
					&cli.StringFlag{Name: "password", Usage: "Login password", Required: true},
					&cli.BoolFlag{Name: "artist", Usage: "Mark the account as an artist"},
				},
				Action: r.UsersAdd,
			},
			{
				Name:   "list",
				Usage:  "List user accounts",
				Flags:  append([]cli.Flag{configFlag()}, jsonFlags()...),
				Action: r.UsersList,
			},
		},
	}
}

// tracksCommand seeds and lists the catalog.
func tracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tracks",
		Usage: "Manage the track catalog",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a track for an artist, creating the album if needed",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{Name: "artist", Usage: "Artist account email", Required: true},
					&cli.StringFlag{Name: "album", Usage: "Album name", Required: true},
					&cli.StringFlag{Name: "name", Usage: "Track name", Required: true},
					&cli.IntFlag{Name: "duration", Usage: "Length in seconds", Required: true},
					&cli.StringFlag{Name: "file", Usage: "Audio file location", Required: true},
				},
				Action: r.TracksAdd,
			},
			{
				Name:  "list",
				Usage: "List tracks in the catalog",
				Flags: append([]cli.Flag{
					configFlag(),
					&cli.StringFlag{Name: "artist", Usage: "Only tracks by this artist email"},
				}, jsonFlags()...),
				Action: r.TracksList,
			},
		},
	}
}

// playlistsCommand reads and exports playlists.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlists",
		Usage: "Inspect and export playlists",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List a user's playlists",
				Flags: append([]cli.Flag{
					configFlag(),
					&cli.StringFlag{Name: "user", Usage: "Owner email", Required: true},
				}, jsonFlags()...),
				Action: r.PlaylistsList,
			},
			{
				Name:  "export",
				Usage: "Export a playlist to CSV, Markdown or plain text",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{Name: "id", Usage: "Playlist ID to export"},
					&cli.BoolFlag{Name: "all", Usage: "Export every playlist owned by --user"},
					&cli.StringFlag{Name: "user", Usage: "Owner email, with --all"},
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "csv, markdown or text (json also with --all)", Value: "csv"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output path (defaults to the playlist ID)"},
					&cli.IntFlag{Name: "workers", Usage: "Concurrent writers, with --all", Value: 4},
				},
				Action: r.PlaylistsExport,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for browsing a user's library.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for a user's playlists",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{Name: "user", Usage: "Owner email", Required: true},
		},
		Action: r.TUI,
	}
}
