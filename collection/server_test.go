package collection_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blueprint-hub/hub-server/account"
	accountmemory "github.com/blueprint-hub/hub-server/account/memory"
	"github.com/blueprint-hub/hub-server/blueprint"
	blueprintmemory "github.com/blueprint-hub/hub-server/blueprint/memory"
	"github.com/blueprint-hub/hub-server/collection"
	collectionmemory "github.com/blueprint-hub/hub-server/collection/memory"
	"github.com/blueprint-hub/hub-server/gate"
	"github.com/blueprint-hub/hub-server/model"
	"github.com/blueprint-hub/hub-server/moderation"
	moderationmemory "github.com/blueprint-hub/hub-server/moderation/memory"
	"github.com/blueprint-hub/hub-server/notification"
	notificationmemory "github.com/blueprint-hub/hub-server/notification/memory"
)

type testEnv struct {
	server      *collection.Server
	collections collection.Store
	client      *moderationmemory.Client
	sent        *notificationmemory.Notifier
	gate        *gate.Gate

	owner *account.User
	other *account.User
	admin *account.User

	blueprintIDs []model.BlueprintID
}

func setup(t *testing.T, cfg gate.Config, client *moderationmemory.Client) *testEnv {
	ctx := context.Background()
	log := zap.NewNop()

	accounts := accountmemory.NewInMemory()
	blueprints := blueprintmemory.NewInMemory()

	env := &testEnv{
		collections: collectionmemory.NewInMemory(),
		client:      client,
		sent:        notificationmemory.NewNotifier(),
		owner:       &account.User{ID: model.MustGenerateUserID(), Username: "builder"},
		other:       &account.User{ID: model.MustGenerateUserID(), Username: "visitor"},
		admin:       &account.User{ID: model.MustGenerateUserID(), Username: "moderator", IsAdmin: true},
	}
	for _, user := range []*account.User{env.owner, env.other, env.admin} {
		require.NoError(t, accounts.CreateUser(ctx, user))
	}

	for _, title := range []string{"Smelter", "Assembler"} {
		b := &blueprint.Blueprint{
			ID:      model.MustGenerateBlueprintID(),
			OwnerID: env.owner.ID,
			Title:   title,
			Status:  blueprint.StatusPublished,
		}
		require.NoError(t, blueprints.CreateBlueprint(ctx, b))
		env.blueprintIDs = append(env.blueprintIDs, b.ID)
	}

	cfg.ReviewURLBase = "https://hub.example.com/admin/"
	env.gate = gate.New(
		log,
		cfg,
		moderation.New(log, client),
		notification.NewModeratorNotifier(log, accounts, env.sent),
	)

	env.server = collection.NewServer(log, env.gate, env.collections, blueprints)
	return env
}

func stringPtr(s string) *string {
	return &s
}

// notices returns what administrators were sent once delivery has settled.
func (e *testEnv) notices() []notificationmemory.Sent {
	e.gate.Wait()
	return e.sent.Sent()
}

func TestServer_CreatePassing(t *testing.T) {
	env := setup(t, gate.Config{Enabled: true}, moderationmemory.NewClient(false))

	c, err := env.server.Create(context.Background(), env.owner, &collection.CreateRequest{
		Title:        "Early game",
		Description:  "Everything to get started",
		BlueprintIDs: []model.BlueprintID{env.blueprintIDs[1], env.blueprintIDs[0], env.blueprintIDs[1]},
	})
	require.NoError(t, err)
	require.Equal(t, collection.StatusPublished, c.Status)
	require.Equal(t, []model.BlueprintID{env.blueprintIDs[1], env.blueprintIDs[0]}, c.BlueprintIDs)
	require.Equal(t, 1, env.client.Calls())
	require.Empty(t, env.notices())

	stored, err := env.collections.GetCollection(context.Background(), c.ID)
	require.NoError(t, err)
	require.Equal(t, c.Title, stored.Title)
}

func TestServer_CreateFlaggedRejected(t *testing.T) {
	env := setup(t, gate.Config{Enabled: true}, moderationmemory.NewClient(true))

	_, err := env.server.Create(context.Background(), env.owner, &collection.CreateRequest{
		Title:       "Bad",
		Description: "Worse",
	})

	var rejection *gate.RejectionError
	require.True(t, errors.As(err, &rejection))
	require.Equal(t, gate.ContentTypeCollection, rejection.ContentType)
	require.Len(t, rejection.Verdict.FlaggedTexts, 1)
	require.Equal(t, moderation.Text{Text: "Bad", Label: "Title"}, rejection.Verdict.FlaggedTexts[0].Text)
	require.Empty(t, rejection.Verdict.FlaggedImages)

	require.Empty(t, env.notices())
}

func TestServer_CreateFlaggedUnderReviewPolicy(t *testing.T) {
	env := setup(t, gate.Config{
		Enabled:  true,
		Policies: map[gate.ContentType]gate.Policy{gate.ContentTypeCollection: gate.PolicyReview},
	}, moderationmemory.NewClient(true))

	c, err := env.server.Create(context.Background(), env.owner, &collection.CreateRequest{Title: "Bad"})
	require.NoError(t, err)
	require.Equal(t, collection.StatusNeedsReview, c.Status)

	sent := env.notices()
	require.Len(t, sent, 1)
	require.Equal(t, "collection", sent[0].Notice.ContentType)
	require.Equal(t, "Bad", sent[0].Notice.ContentTitle)
	require.Equal(t, "https://hub.example.com/admin/collections/"+c.ID.String(), sent[0].Notice.ReviewURL)

	_, err = env.server.Get(context.Background(), env.other, c.ID)
	require.ErrorIs(t, err, collection.ErrNotFound)

	visible, err := env.server.Get(context.Background(), env.owner, c.ID)
	require.NoError(t, err)
	require.Equal(t, c.ID, visible.ID)
}

func TestServer_CreateWithModerationDisabled(t *testing.T) {
	env := setup(t, gate.Config{Enabled: false}, moderationmemory.NewClient(true))

	c, err := env.server.Create(context.Background(), env.owner, &collection.CreateRequest{Title: "Bad"})
	require.NoError(t, err)
	require.Equal(t, collection.StatusPublished, c.Status)
	require.Equal(t, 0, env.client.Calls())
}

func TestServer_CreateValidation(t *testing.T) {
	env := setup(t, gate.Config{Enabled: true}, moderationmemory.NewClient(false))

	_, err := env.server.Create(context.Background(), env.owner, &collection.CreateRequest{Title: " "})
	require.ErrorIs(t, err, collection.ErrTitleRequired)

	_, err = env.server.Create(context.Background(), env.owner, &collection.CreateRequest{
		Title:        "Early game",
		BlueprintIDs: []model.BlueprintID{model.MustGenerateBlueprintID()},
	})
	require.ErrorIs(t, err, collection.ErrBlueprintNotFound)

	require.Equal(t, 0, env.client.Calls())
}

func TestServer_Update(t *testing.T) {
	env := setup(t, gate.Config{Enabled: true}, moderationmemory.NewClient(false))
	ctx := context.Background()

	c, err := env.server.Create(ctx, env.owner, &collection.CreateRequest{
		Title:        "Early game",
		BlueprintIDs: env.blueprintIDs[:1],
	})
	require.NoError(t, err)

	_, err = env.server.Update(ctx, env.other, c.ID, &collection.UpdateRequest{Title: stringPtr("Stolen")})
	require.ErrorIs(t, err, account.ErrPermissionDenied)

	updated, err := env.server.Update(ctx, env.owner, c.ID, &collection.UpdateRequest{
		BlueprintIDs: env.blueprintIDs,
	})
	require.NoError(t, err)
	require.Equal(t, "Early game", updated.Title)
	require.Equal(t, env.blueprintIDs, updated.BlueprintIDs)

	// Nothing textual was submitted, so nothing was moderated
	require.Equal(t, 1, env.client.Calls())

	_, err = env.server.Update(ctx, env.owner, model.MustGenerateCollectionID(), &collection.UpdateRequest{})
	require.ErrorIs(t, err, collection.ErrNotFound)
}

func TestServer_UpdateFlaggedRejected(t *testing.T) {
	env := setup(t, gate.Config{Enabled: true}, moderationmemory.NewClient(true))
	ctx := context.Background()

	existing := &collection.Collection{
		ID:      model.MustGenerateCollectionID(),
		OwnerID: env.owner.ID,
		Title:   "Early game",
		Status:  collection.StatusPublished,
	}
	require.NoError(t, env.collections.CreateCollection(ctx, existing))

	_, err := env.server.Update(ctx, env.owner, existing.ID, &collection.UpdateRequest{Description: stringPtr("Worse")})

	var rejection *gate.RejectionError
	require.True(t, errors.As(err, &rejection))
	require.Equal(t, moderation.Text{Text: "Worse", Label: "Description"}, rejection.Verdict.FlaggedTexts[0].Text)

	stored, err := env.collections.GetCollection(ctx, existing.ID)
	require.NoError(t, err)
	require.Empty(t, stored.Description)
}

func TestServer_UpdateFlaggedNoticeAuthor(t *testing.T) {
	env := setup(t, gate.Config{
		Enabled:  true,
		Policies: map[gate.ContentType]gate.Policy{gate.ContentTypeCollection: gate.PolicyReview},
	}, moderationmemory.NewClient(true))
	ctx := context.Background()

	existing := &collection.Collection{
		ID:      model.MustGenerateCollectionID(),
		OwnerID: env.owner.ID,
		Title:   "Early game",
		Status:  collection.StatusPublished,
	}
	require.NoError(t, env.collections.CreateCollection(ctx, existing))

	updated, err := env.server.Update(ctx, env.owner, existing.ID, &collection.UpdateRequest{Description: stringPtr("Worse")})
	require.NoError(t, err)
	require.Equal(t, collection.StatusNeedsReview, updated.Status)

	sent := env.notices()
	require.Len(t, sent, 1)
	require.Equal(t, "Early game", sent[0].Notice.ContentTitle)
	require.Equal(t, env.owner.ID, sent[0].Notice.Author.ID)

	// An admin edit does not name the admin as the author
	_, err = env.server.Update(ctx, env.admin, existing.ID, &collection.UpdateRequest{Description: stringPtr("Worse still")})
	require.NoError(t, err)

	sent = env.notices()
	require.Len(t, sent, 2)
	require.Nil(t, sent[1].Notice.Author)
}
