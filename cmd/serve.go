package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/mixtape/internal/server"
	"github.com/desertthunder/mixtape/internal/ui"
)

const defaultSessionSecret = "change-me"

// Serve runs the HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if config.Server.SessionSecret == defaultSessionSecret {
		r.writePlain("%s server.session_secret is the example value; set MIXTAPE_SESSION_SECRET\n", ui.Warning("!"))
	}

	store, err := r.open(ctx, cmd)
	if err != nil {
		return err
	}

	files, err := r.storage(cmd)
	if err != nil {
		return err
	}

	srv, err := server.New(config.Server, store, files, r.logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx)
}
