package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/mixtape/internal/auth"
	"github.com/desertthunder/mixtape/internal/forms"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/repositories"
	"github.com/desertthunder/mixtape/internal/shared"
)

// Account validation messages.
const (
	MsgEmailInUse        = "Email address is already in use."
	MsgEmailNotFound     = "Email provided not found."
	MsgPasswordIncorrect = "Password was incorrect."
)

// AccountService signs users up and checks their credentials.
type AccountService struct {
	store  *repositories.Store
	logger *log.Logger
}

// NewAccountService creates an [AccountService].
func NewAccountService(store *repositories.Store, logger *log.Logger) *AccountService {
	return &AccountService{store: store, logger: logger}
}

// Signup creates a user with a bcrypt-hashed password.
func (s *AccountService) Signup(ctx context.Context, form forms.Result[forms.SignupForm]) (*models.UserDTO, error) {
	if !form.Valid() {
		return nil, &ValidationError{Errors: form.Errors()}
	}
	data := form.Data()
	email := strings.ToLower(data.Email)

	users := s.store.Repos().Users
	if _, err := users.GetByEmail(ctx, email); err == nil {
		return nil, NewValidationError("email", MsgEmailInUse)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(data.Password)
	if err != nil {
		return nil, err
	}

	user := models.NewUser(0, email, data.Name)
	user.HashedPassword = hash
	user.IsArtist = data.IsArtist
	user.ImageURL = data.ImageURL

	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return nil, NewValidationError("email", MsgEmailInUse)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("created user", "id", user.ID(), "artist", user.IsArtist)
	dto := user.ToDTO()
	return &dto, nil
}

// Login checks the credentials and returns the user.
func (s *AccountService) Login(ctx context.Context, form forms.Result[forms.LoginForm]) (*models.UserDTO, error) {
	if !form.Valid() {
		return nil, &ValidationError{Errors: form.Errors()}
	}
	data := form.Data()

	user, err := s.store.Repos().Users.GetByEmail(ctx, strings.ToLower(data.Email))
	if errors.Is(err, shared.ErrNotFound) {
		return nil, NewValidationError("email", MsgEmailNotFound)
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(user.HashedPassword, data.Password) {
		return nil, NewValidationError("password", MsgPasswordIncorrect)
	}

	dto := user.ToDTO()
	return &dto, nil
}

// Get returns the public view of a user.
func (s *AccountService) Get(ctx context.Context, id string) (*models.UserDTO, error) {
	user, err := s.store.Repos().Users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := user.ToDTO()
	return &dto, nil
}

// List returns every user in creation order.
func (s *AccountService) List(ctx context.Context) ([]models.UserDTO, error) {
	users, err := s.store.Repos().Users.List(ctx, nil)
	if err != nil {
		return nil, err
	}

	dtos := make([]models.UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, u.ToDTO())
	}
	return dtos, nil
}
