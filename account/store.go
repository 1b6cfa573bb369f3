package account

import (
	"context"
	"errors"
	"time"

	"github.com/blueprint-hub/hub-server/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
)

type User struct {
	ID        model.UserID `json:"id"`
	Username  string       `json:"username"`
	Email     string       `json:"email,omitempty"`
	IsAdmin   bool         `json:"is_admin"`
	CreatedAt time.Time    `json:"created_at"`
}

func (u *User) Clone() *User {
	cloned := *u
	return &cloned
}

type Store interface {
	// CreateUser stores a new user.
	//
	// ErrExists is returned if the id or username is taken.
	CreateUser(ctx context.Context, user *User) error

	// GetUser returns the user with the given id.
	//
	// ErrNotFound is returned if no such user exists.
	GetUser(ctx context.Context, id model.UserID) (*User, error)

	// GetAdmins returns every administrator, oldest first.
	GetAdmins(ctx context.Context) ([]*User, error)

	// SetAdmin grants or revokes administrator rights.
	SetAdmin(ctx context.Context, id model.UserID, isAdmin bool) error
}
