package account

import (
	"context"
	"errors"

	"github.com/blueprint-hub/hub-server/model"
)

var ErrPermissionDenied = errors.New("permission denied")

// Authorizer resolves the caller of a request. Callers are identified by an
// upstream gateway; the Authorizer only checks that they exist and what they
// may do.
type Authorizer struct {
	store Store
}

func NewAuthorizer(store Store) *Authorizer {
	return &Authorizer{
		store: store,
	}
}

// Authorize returns the user for userID, or ErrPermissionDenied if there is
// no such user.
func (a *Authorizer) Authorize(ctx context.Context, userID model.UserID) (*User, error) {
	user, err := a.store.GetUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrPermissionDenied
	} else if err != nil {
		return nil, err
	}
	return user, nil
}

// AuthorizeAdmin is Authorize restricted to administrators.
func (a *Authorizer) AuthorizeAdmin(ctx context.Context, userID model.UserID) (*User, error) {
	user, err := a.Authorize(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin {
		return nil, ErrPermissionDenied
	}
	return user, nil
}
