package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blueprint-hub/hub-server/account"
	"github.com/blueprint-hub/hub-server/model"
)

func RunStoreTests(t *testing.T, s account.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s account.Store){
		testCreateAndGet,
		testCreateDuplicate,
		testAdmins,
	} {
		tf(t, s)
		teardown()
	}
}

func newUser(username string) *account.User {
	return &account.User{
		ID:        model.MustGenerateUserID(),
		Username:  username,
		Email:     username + "@example.com",
		CreatedAt: time.Now(),
	}
}

func testCreateAndGet(t *testing.T, s account.Store) {
	ctx := context.Background()

	user := newUser("builder")

	_, err := s.GetUser(ctx, user.ID)
	require.ErrorIs(t, err, account.ErrNotFound)

	require.NoError(t, s.CreateUser(ctx, user))

	actual, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.ID, actual.ID)
	require.Equal(t, user.Username, actual.Username)
	require.Equal(t, user.Email, actual.Email)
	require.False(t, actual.IsAdmin)
	require.WithinDuration(t, user.CreatedAt, actual.CreatedAt, time.Second)
}

func testCreateDuplicate(t *testing.T, s account.Store) {
	ctx := context.Background()

	user := newUser("builder")
	require.NoError(t, s.CreateUser(ctx, user))
	require.ErrorIs(t, s.CreateUser(ctx, user), account.ErrExists)

	// Usernames are unique
	require.ErrorIs(t, s.CreateUser(ctx, newUser("builder")), account.ErrExists)
}

func testAdmins(t *testing.T, s account.Store) {
	ctx := context.Background()

	admins, err := s.GetAdmins(ctx)
	require.NoError(t, err)
	require.Empty(t, admins)

	require.ErrorIs(t, s.SetAdmin(ctx, model.MustGenerateUserID(), true), account.ErrNotFound)

	first := newUser("first")
	first.IsAdmin = true
	first.CreatedAt = time.Now().Add(-time.Hour)
	second := newUser("second")
	member := newUser("member")

	for _, user := range []*account.User{first, second, member} {
		require.NoError(t, s.CreateUser(ctx, user))
	}
	require.NoError(t, s.SetAdmin(ctx, second.ID, true))

	admins, err = s.GetAdmins(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 2)
	require.Equal(t, first.ID, admins[0].ID)
	require.Equal(t, second.ID, admins[1].ID)

	require.NoError(t, s.SetAdmin(ctx, first.ID, false))

	admins, err = s.GetAdmins(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	require.Equal(t, second.ID, admins[0].ID)

	actual, err := s.GetUser(ctx, first.ID)
	require.NoError(t, err)
	require.False(t, actual.IsAdmin)
}
