package users

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is the canonical user record. PasswordHash never leaves the domain
// layer; handlers serialize Summary instead.
type User struct {
	ID             string
	Name           string
	Email          string
	PasswordHash   string
	Avatar         string
	JoinedEventIDs []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Summary is the client-safe projection of a User.
type Summary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

func (u User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar}
}

// ProfileUpdate carries patch semantics: nil fields are left untouched.
type ProfileUpdate struct {
	Name         *string
	Email        *string
	Avatar       *string
	PasswordHash *string
}

type Repository interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, id string, update ProfileUpdate) (*User, error)
}
