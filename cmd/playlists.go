package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/mixtape/internal/formatter"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/repositories"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/desertthunder/mixtape/internal/tasks"
	"github.com/desertthunder/mixtape/internal/ui"
)

// Export formats accepted by `playlists export`.
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

func (r *Runner) playlistService(ctx context.Context, cmd *cli.Command) (*services.PlaylistService, *repositories.Store, error) {
	store, err := r.open(ctx, cmd)
	if err != nil {
		return nil, nil, err
	}
	files, err := r.storage(cmd)
	if err != nil {
		return nil, nil, err
	}
	return services.NewPlaylistService(store, files, r.logger), store, nil
}

// PlaylistsList prints a user's playlists with their track counts.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	playlists, store, err := r.playlistService(ctx, cmd)
	if err != nil {
		return err
	}

	user, err := r.userByEmail(ctx, store, cmd.String("user"))
	if err != nil {
		return err
	}

	details, err := playlists.ListForUser(ctx, user.ID())
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"playlists": details}, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Playlists for %s (%d)", user.Name, len(details)))
	for _, p := range details {
		r.writePlain("%s  %s %s\n", p.ID, p.Name,
			ui.Muted(fmt.Sprintf("%d tracks • %s", len(p.Tracks), shared.VisibilityString(p.Private))))
	}
	return nil
}

// PlaylistsExport writes a playlist in the requested format.
func (r *Runner) PlaylistsExport(ctx context.Context, cmd *cli.Command) error {
	format := strings.ToLower(cmd.String("format"))
	switch format {
	case FormatCSV, FormatMarkdown, FormatText:
	case "md":
		format = FormatMarkdown
	case "txt":
		format = FormatText
	case tasks.FormatJSON:
		if !cmd.Bool("all") {
			return fmt.Errorf("%w: json is only available with --all", shared.ErrInvalidArgument)
		}
	default:
		return fmt.Errorf("%w: unknown export format %q (csv, markdown or text)", shared.ErrInvalidArgument, format)
	}

	if cmd.Bool("all") {
		return r.exportAll(ctx, cmd, format)
	}
	if cmd.String("id") == "" {
		return fmt.Errorf("%w: --id or --all is required", shared.ErrMissingArgument)
	}

	playlists, store, err := r.playlistService(ctx, cmd)
	if err != nil {
		return err
	}

	detail, err := playlists.Get(ctx, cmd.String("id"))
	if err != nil {
		return err
	}

	export, err := buildExport(ctx, store.Repos(), detail)
	if err != nil {
		return err
	}

	output := cmd.String("output")
	switch format {
	case FormatCSV:
		result, err := formatter.WriteCSVExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("%s tracks written to %s\n", ui.Success("✓"), result.TracksFile)
		r.writePlain("%s metadata written to %s\n", ui.Success("✓"), result.MetadataFile)
	case FormatMarkdown:
		result, err := formatter.WriteMarkdownExport(ctx, export, output, r.logger)
		if err != nil {
			return err
		}
		for _, f := range result.Files {
			r.writePlain("%s wrote %s\n", ui.Success("✓"), f)
		}
	case FormatText:
		path, err := formatter.WriteTextExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("%s tracks written to %s\n", ui.Success("✓"), path)
	}
	return nil
}

// exportAll writes every playlist owned by --user into one directory.
func (r *Runner) exportAll(ctx context.Context, cmd *cli.Command, format string) error {
	if cmd.String("user") == "" {
		return fmt.Errorf("%w: --user is required with --all", shared.ErrMissingArgument)
	}

	playlists, store, err := r.playlistService(ctx, cmd)
	if err != nil {
		return err
	}

	user, err := r.userByEmail(ctx, store, cmd.String("user"))
	if err != nil {
		return err
	}

	owned, err := store.Repos().Playlists.List(ctx, map[string]any{"user_id": user.ID()})
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(owned))
	for _, p := range owned {
		ids = append(ids, p.ID())
	}

	engine := tasks.NewExportEngine(playlists, func(ctx context.Context, detail *models.PlaylistDetail) (*formatter.Export, error) {
		return buildExport(ctx, store.Repos(), detail)
	}, r.logger)

	progress := make(chan tasks.ProgressUpdate, 2*len(ids)+1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			if update.Phase == tasks.ExportPlaylist {
				r.writePlain("%s\n", update.Message)
			}
		}
	}()

	result, err := engine.BulkExport(ctx, progress, ids, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	summary := fmt.Sprintf("exported %d/%d playlists to %s", result.SuccessfulExports, result.TotalPlaylists, result.OutputDirectory)
	if result.FailedExports > 0 {
		r.writePlain("%s %s\n", ui.Warning("!"), summary)
	} else {
		r.writePlain("%s %s\n", ui.Success("✓"), summary)
	}
	r.writePlain("manifest: %s\n", result.ManifestPath)
	return nil
}

// buildExport resolves owner, artist and album names for a playlist.
func buildExport(ctx context.Context, repos *repositories.Repositories, detail *models.PlaylistDetail) (*formatter.Export, error) {
	export := &formatter.Export{Playlist: *detail, Entries: make([]formatter.Entry, 0, len(detail.Tracks))}

	owner, err := repos.Users.Get(ctx, detail.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load playlist owner: %w", err)
	}
	export.Owner = owner.Name

	artists := map[string]string{}
	albums := map[string]string{}
	for i, track := range detail.Tracks {
		entry := formatter.Entry{Position: i + 1, Track: track}

		if name, ok := artists[track.ArtistID]; ok {
			entry.Artist = name
		} else if artist, err := repos.Users.Get(ctx, track.ArtistID); err == nil {
			artists[track.ArtistID] = artist.Name
			entry.Artist = artist.Name
		} else if !isNotFound(err) {
			return nil, err
		}

		if track.AlbumID != "" {
			if name, ok := albums[track.AlbumID]; ok {
				entry.Album = name
			} else if album, err := repos.Albums.Get(ctx, track.AlbumID); err == nil {
				albums[track.AlbumID] = album.Name
				entry.Album = album.Name
			} else if !isNotFound(err) {
				return nil, err
			}
		}

		export.Entries = append(export.Entries, entry)
	}
	return export, nil
}
