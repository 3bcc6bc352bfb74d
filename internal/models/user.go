package models

import (
	"fmt"
	"net/mail"
)

// User is a listener or artist account.
type User struct {
	record
	Name           string
	Email          string
	HashedPassword string
	IsArtist       bool
	ImageURL       string
}

// UserDTO is the public JSON representation of a [User].
type UserDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsArtist bool   `json:"isArtist"`
	ImageURL string `json:"imageUrl"`
}

// NewUser creates a user with the given sequence, email and display name.
func NewUser(sequence int, email, name string) *User {
	return &User{record: newRecord(sequence), Email: email, Name: name}
}

// Validate checks required fields.
func (u *User) Validate() error {
	if u.Name == "" {
		return fmt.Errorf("user name is required")
	}
	if u.Email == "" {
		return fmt.Errorf("user email is required")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return fmt.Errorf("invalid user email %q: %w", u.Email, err)
	}
	return nil
}

// ToDTO converts the user to its public representation.
func (u *User) ToDTO() UserDTO {
	return UserDTO{ID: u.ID(), Name: u.Name, Email: u.Email, IsArtist: u.IsArtist, ImageURL: u.ImageURL}
}
