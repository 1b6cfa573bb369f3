package blueprint_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blueprint-hub/hub-server/account"
	accountmemory "github.com/blueprint-hub/hub-server/account/memory"
	"github.com/blueprint-hub/hub-server/blob"
	blobmemory "github.com/blueprint-hub/hub-server/blob/memory"
	"github.com/blueprint-hub/hub-server/blueprint"
	blueprintmemory "github.com/blueprint-hub/hub-server/blueprint/memory"
	"github.com/blueprint-hub/hub-server/gate"
	"github.com/blueprint-hub/hub-server/model"
	"github.com/blueprint-hub/hub-server/moderation"
	moderationmemory "github.com/blueprint-hub/hub-server/moderation/memory"
	"github.com/blueprint-hub/hub-server/notification"
	notificationmemory "github.com/blueprint-hub/hub-server/notification/memory"
	s3memory "github.com/blueprint-hub/hub-server/s3/memory"
)

type testEnv struct {
	server     *blueprint.Server
	blueprints blueprint.Store
	blobs      blob.Store
	client     *moderationmemory.Client
	sent       *notificationmemory.Notifier
	gate       *gate.Gate

	owner *account.User
	other *account.User
	admin *account.User
}

func setup(t *testing.T, cfg gate.Config, client *moderationmemory.Client) *testEnv {
	ctx := context.Background()
	log := zap.NewNop()

	accounts := accountmemory.NewInMemory()
	env := &testEnv{
		blueprints: blueprintmemory.NewInMemory(),
		blobs:      blobmemory.NewInMemory(),
		client:     client,
		sent:       notificationmemory.NewNotifier(),
		owner:      &account.User{ID: model.MustGenerateUserID(), Username: "builder"},
		other:      &account.User{ID: model.MustGenerateUserID(), Username: "visitor"},
		admin:      &account.User{ID: model.MustGenerateUserID(), Username: "moderator", IsAdmin: true},
	}
	for _, user := range []*account.User{env.owner, env.other, env.admin} {
		require.NoError(t, accounts.CreateUser(ctx, user))
	}

	cfg.ReviewURLBase = "https://hub.example.com/admin"
	env.gate = gate.New(
		log,
		cfg,
		moderation.New(log, client),
		notification.NewModeratorNotifier(log, accounts, env.sent),
	)
	uploader := blob.NewUploader(log, env.blobs, s3memory.NewInMemory(), "hub-assets", "us-east-1")

	env.server = blueprint.NewServer(log, env.gate, env.blueprints, env.blobs, uploader)
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

func TestServer_CreateWithModerationDisabled(t *testing.T) {
	env := setup(t, gate.Config{Enabled: false}, moderationmemory.NewClient(true))

	b, err := env.server.Create(context.Background(), env.owner, &blueprint.CreateRequest{
		Title:       "Bad",
		Description: "Worse",
	})
	require.NoError(t, err)
	require.Equal(t, blueprint.StatusPublished, b.Status)
	require.Equal(t, 0, env.client.Calls())
	require.Empty(t, env.notices())
}

func TestServer_CreatePassing(t *testing.T) {
	env := setup(t, gate.Config{Enabled: true}, moderationmemory.NewClient(false))

	b, err := env.server.Create(context.Background(), env.owner, &blueprint.CreateRequest{
		Title:       "  Starter base  ",
		Description: "Solar and a smelter",
		Images:      []moderation.Image{&moderation.Upload{Filename: "base.png", Data: []byte("not really a png")}},
	})
	require.NoError(t, err)
	require.Equal(t, "Starter base", b.Title)
	require.Equal(t, blueprint.StatusPublished, b.Status)
	require.Len(t, b.ImageIDs, 1)
	require.Equal(t, 1, env.client.Calls())
	require.Empty(t, env.notices())

	stored, err := env.blueprints.GetBlueprint(context.Background(), b.ID)
	require.NoError(t, err)
	require.Equal(t, b, stored)

	image, err := env.blobs.GetBlob(context.Background(), b.ImageIDs[0])
	require.NoError(t, err)
	require.Equal(t, "base.png", image.Filename)
	require.False(t, image.Flagged)
}

func TestServer_CreateFlaggedHeldForReview(t *testing.T) {
	env := setup(t, gate.Config{Enabled: true}, moderationmemory.NewClient(true))

	b, err := env.server.Create(context.Background(), env.owner, &blueprint.CreateRequest{
		Title:       "Bad",
		Description: "Worse",
	})
	require.NoError(t, err)
	require.Equal(t, blueprint.StatusNeedsReview, b.Status)

	sent := env.notices()
	require.Len(t, sent, 1)
	require.Equal(t, env.admin.ID, sent[0].Recipient.ID)

	notice := sent[0].Notice
	require.Equal(t, "blueprint", notice.ContentType)
	require.Equal(t, "Bad", notice.ContentTitle)
	require.Equal(t, env.owner.ID, notice.Author.ID)
	require.Equal(t, "https://hub.example.com/admin/blueprints/"+b.ID.String(), notice.ReviewURL)
	require.Len(t, notice.FlaggedTexts, 1)
	require.Equal(t, moderation.Text{Text: "Bad", Label: "Title"}, notice.FlaggedTexts[0].Text)
	require.Empty(t, notice.FlaggedImages)
}

func TestServer_CreateRejectPolicy(t *testing.T) {
	env := setup(t, gate.Config{
		Enabled:  true,
		Policies: map[gate.ContentType]gate.Policy{gate.ContentTypeBlueprint: gate.PolicyReject},
	}, moderationmemory.NewClient(true))

	_, err := env.server.Create(context.Background(), env.owner, &blueprint.CreateRequest{
		Title:  "Bad",
		Images: []moderation.Image{&moderation.Upload{Filename: "bad.png", Data: []byte("pixels")}},
	})

	var rejection *gate.RejectionError
	require.True(t, errors.As(err, &rejection))
	require.Equal(t, gate.ContentTypeBlueprint, rejection.ContentType)
	require.Len(t, rejection.Verdict.FlaggedTexts, 1)
	require.Len(t, rejection.Verdict.FlaggedImages, 1)
	require.Equal(t, "bad.png", rejection.Verdict.FlaggedImages[0].Image)

	for _, status := range []blueprint.Status{blueprint.StatusPublished, blueprint.StatusNeedsReview} {
		stored, err := env.blueprints.ListByStatus(context.Background(), status)
		require.NoError(t, err)
		require.Empty(t, stored)
	}
	require.Empty(t, env.notices())
}

func TestServer_CreateFlagsImageBlobs(t *testing.T) {
	client := moderationmemory.NewClientWithResults(
		moderation.Result{Flagged: false},
		moderation.Result{
			Flagged:    true,
			Categories: []moderation.Category{{Name: "sexual", Violated: true, Score: 0.9}},
		},
	)
	env := setup(t, gate.Config{Enabled: true}, client)

	b, err := env.server.Create(context.Background(), env.owner, &blueprint.CreateRequest{
		Title: "Harmless title",
		// Same filename; only the submitted first image is flagged
		Images: []moderation.Image{
			&moderation.Upload{Filename: "image.png", Data: []byte("cover")},
			&moderation.Upload{Filename: "image.png", Data: []byte("detail")},
		},
	})
	require.NoError(t, err)
	require.Equal(t, blueprint.StatusNeedsReview, b.Status)
	require.Len(t, b.ImageIDs, 2)

	cover, err := env.blobs.GetBlob(context.Background(), b.ImageIDs[0])
	require.NoError(t, err)
	require.True(t, cover.Flagged)

	detail, err := env.blobs.GetBlob(context.Background(), b.ImageIDs[1])
	require.NoError(t, err)
	require.False(t, detail.Flagged)

	sent := env.notices()
	require.Len(t, sent, 1)
	require.Empty(t, sent[0].Notice.FlaggedTexts)
	require.Len(t, sent[0].Notice.FlaggedImages, 1)
	require.Equal(t, "image.png", sent[0].Notice.FlaggedImages[0].Image)
}

func TestServer_CreateValidation(t *testing.T) {
	env := setup(t, gate.Config{Enabled: true}, moderationmemory.NewClient(false))

	_, err := env.server.Create(context.Background(), env.owner, &blueprint.CreateRequest{Title: "   "})
	require.ErrorIs(t, err, blueprint.ErrTitleRequired)

	_, err = env.server.Create(context.Background(), env.owner, &blueprint.CreateRequest{
		Title:  "Starter base",
		Images: []moderation.Image{&moderation.Upload{Filename: "empty.png"}},
	})
	var notFound *moderation.ImageNotFoundError
	require.True(t, errors.As(err, &notFound))
	require.Equal(t, "empty.png", notFound.Image)

	require.Equal(t, 0, env.client.Calls())
}

func TestServer_Update(t *testing.T) {
	client := moderationmemory.NewClient(false)
	env := setup(t, gate.Config{Enabled: true}, client)
	ctx := context.Background()

	created, err := env.server.Create(ctx, env.owner, &blueprint.CreateRequest{
		Title:       "Starter base",
		Description: "Solar and a smelter",
		Images:      []moderation.Image{&moderation.Upload{Filename: "one.png", Data: []byte("one")}},
	})
	require.NoError(t, err)

	updated, err := env.server.Update(ctx, env.owner, created.ID, &blueprint.UpdateRequest{
		Description: stringPtr("Solar, a smelter and a belt bus"),
		Images:      []moderation.Image{&moderation.Upload{Filename: "two.png", Data: []byte("two")}},
	})
	require.NoError(t, err)
	require.Equal(t, "Starter base", updated.Title)
	require.Equal(t, "Solar, a smelter and a belt bus", updated.Description)
	require.Equal(t, blueprint.StatusPublished, updated.Status)
	require.Len(t, updated.ImageIDs, 2)
	require.Equal(t, created.ImageIDs[0], updated.ImageIDs[0])

	inputs := client.Inputs()
	require.Len(t, inputs, 2)
	require.Len(t, inputs[1], 2)
	require.Equal(t, `"Description: Solar, a smelter and a belt bus"`, inputs[1][0].Text)

	_, err = env.server.Update(ctx, env.owner, created.ID, &blueprint.UpdateRequest{Title: stringPtr("")})
	require.ErrorIs(t, err, blueprint.ErrTitleRequired)
}

func TestServer_UpdateFlaggedFallsBackToStoredTitle(t *testing.T) {
	env := setup(t, gate.Config{Enabled: true}, moderationmemory.NewClient(true))
	ctx := context.Background()

	existing := &blueprint.Blueprint{
		ID:      model.MustGenerateBlueprintID(),
		OwnerID: env.owner.ID,
		Title:   "Starter base",
		Status:  blueprint.StatusPublished,
	}
	require.NoError(t, env.blueprints.CreateBlueprint(ctx, existing))

	updated, err := env.server.Update(ctx, env.owner, existing.ID, &blueprint.UpdateRequest{
		Description: stringPtr("Worse"),
	})
	require.NoError(t, err)
	require.Equal(t, blueprint.StatusNeedsReview, updated.Status)
	require.Equal(t, "Starter base", updated.Title)

	sent := env.notices()
	require.Len(t, sent, 1)
	require.Equal(t, "Starter base", sent[0].Notice.ContentTitle)
	require.Equal(t, env.owner.ID, sent[0].Notice.Author.ID)
	require.Equal(t, moderation.Text{Text: "Worse", Label: "Description"}, sent[0].Notice.FlaggedTexts[0].Text)

	env.sent.Reset()

	_, err = env.server.Update(ctx, env.owner, existing.ID, &blueprint.UpdateRequest{Title: stringPtr("Renamed")})
	require.NoError(t, err)

	sent = env.notices()
	require.Len(t, sent, 1)
	require.Equal(t, "Renamed", sent[0].Notice.ContentTitle)
}

func TestServer_UpdatePermissions(t *testing.T) {
	env := setup(t, gate.Config{Enabled: true}, moderationmemory.NewClient(false))
	ctx := context.Background()

	created, err := env.server.Create(ctx, env.owner, &blueprint.CreateRequest{Title: "Starter base"})
	require.NoError(t, err)

	_, err = env.server.Update(ctx, env.other, created.ID, &blueprint.UpdateRequest{Title: stringPtr("Mine now")})
	require.ErrorIs(t, err, account.ErrPermissionDenied)

	updated, err := env.server.Update(ctx, env.admin, created.ID, &blueprint.UpdateRequest{Title: stringPtr("Renamed")})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Title)
	require.Equal(t, env.owner.ID, updated.OwnerID)

	_, err = env.server.Update(ctx, env.owner, model.MustGenerateBlueprintID(), &blueprint.UpdateRequest{})
	require.ErrorIs(t, err, blueprint.ErrNotFound)
}

func TestServer_ReviewWorkflow(t *testing.T) {
	env := setup(t, gate.Config{Enabled: true}, moderationmemory.NewClient(true))
	ctx := context.Background()

	created, err := env.server.Create(ctx, env.owner, &blueprint.CreateRequest{Title: "Bad"})
	require.NoError(t, err)
	require.Equal(t, blueprint.StatusNeedsReview, created.Status)

	_, err = env.server.Get(ctx, nil, created.ID)
	require.ErrorIs(t, err, blueprint.ErrNotFound)
	_, err = env.server.Get(ctx, env.other, created.ID)
	require.ErrorIs(t, err, blueprint.ErrNotFound)

	visible, err := env.server.Get(ctx, env.owner, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, visible.ID)

	_, err = env.server.ListForReview(ctx, env.owner)
	require.ErrorIs(t, err, account.ErrPermissionDenied)

	pending, err := env.server.ListForReview(ctx, env.admin)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, created.ID, pending[0].ID)

	require.ErrorIs(t, env.server.Approve(ctx, env.owner, created.ID), account.ErrPermissionDenied)
	require.NoError(t, env.server.Approve(ctx, env.admin, created.ID))

	published, err := env.server.Get(ctx, nil, created.ID)
	require.NoError(t, err)
	require.Equal(t, blueprint.StatusPublished, published.Status)

	pending, err = env.server.ListForReview(ctx, env.admin)
	require.NoError(t, err)
	require.Empty(t, pending)
}
