package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/desertthunder/mixtape/internal/ui"
)

// TracksAdd seeds one track into the catalog.
func (r *Runner) TracksAdd(ctx context.Context, cmd *cli.Command) error {
	store, err := r.open(ctx, cmd)
	if err != nil {
		return err
	}

	track, err := services.NewCatalogService(store, r.logger).AddTrack(ctx, services.NewTrack{
		ArtistEmail: cmd.String("artist"),
		Album:       cmd.String("album"),
		Name:        cmd.String("name"),
		Duration:    int(cmd.Int("duration")),
		File:        cmd.String("file"),
	})
	if err != nil {
		return err
	}

	r.writePlain("%s added %s [%s] (%s)\n", ui.Success("✓"), track.Name, shared.FormatDuration(track.Duration), track.ID)
	return nil
}

// TracksList prints the catalog, optionally for a single artist.
func (r *Runner) TracksList(ctx context.Context, cmd *cli.Command) error {
	store, err := r.open(ctx, cmd)
	if err != nil {
		return err
	}

	var artistID string
	if email := cmd.String("artist"); email != "" {
		artist, err := r.userByEmail(ctx, store, email)
		if err != nil {
			return err
		}
		artistID = artist.ID()
	}

	tracks, err := services.NewCatalogService(store, r.logger).Tracks(ctx, artistID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Tracks (%d)", len(tracks)))
	for _, t := range tracks {
		r.writePlain("%s  %s [%s] %s\n", t.ID, t.Name, shared.FormatDuration(t.Duration), ui.Muted(t.File))
	}
	return nil
}
