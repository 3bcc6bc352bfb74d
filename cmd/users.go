package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/mixtape/internal/forms"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/repositories"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/desertthunder/mixtape/internal/ui"
)

// UsersAdd creates an account with the same validation as the signup endpoint.
func (r *Runner) UsersAdd(ctx context.Context, cmd *cli.Command) error {
	store, err := r.open(ctx, cmd)
	if err != nil {
		return err
	}

	form := forms.Check(forms.NewDecoder(nil), forms.SignupForm{
		Name:     cmd.String("name"),
		Email:    cmd.String("email"),
		Password: cmd.String("password"),
		IsArtist: cmd.Bool("artist"),
	})

	user, err := services.NewAccountService(store, r.logger).Signup(ctx, form)
	if err != nil {
		return r.writeValidation(err)
	}

	r.writePlain("%s created %s <%s> (%s)\n", ui.Success("✓"), user.Name, user.Email, user.ID)
	return nil
}

// UsersList prints every account.
func (r *Runner) UsersList(ctx context.Context, cmd *cli.Command) error {
	store, err := r.open(ctx, cmd)
	if err != nil {
		return err
	}

	users, err := services.NewAccountService(store, r.logger).List(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(users, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Users (%d)", len(users)))
	for _, u := range users {
		role := ""
		if u.IsArtist {
			role = ui.Muted(" artist")
		}
		r.writePlain("%s  %s <%s>%s\n", u.ID, u.Name, u.Email, role)
	}
	return nil
}

// userByEmail resolves an account for commands that act on behalf of a user.
func (r *Runner) userByEmail(ctx context.Context, store *repositories.Store, email string) (*models.User, error) {
	user, err := store.Repos().Users.GetByEmail(ctx, strings.ToLower(email))
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: no user with email %q", shared.ErrInvalidArgument, email)
	}
	return user, err
}
