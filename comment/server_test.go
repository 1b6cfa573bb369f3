package comment_test

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
	"github.com/blueprint-hub/hub-server/comment"
	commentmemory "github.com/blueprint-hub/hub-server/comment/memory"
	"github.com/blueprint-hub/hub-server/event"
	"github.com/blueprint-hub/hub-server/gate"
	"github.com/blueprint-hub/hub-server/model"
	"github.com/blueprint-hub/hub-server/moderation"
	moderationmemory "github.com/blueprint-hub/hub-server/moderation/memory"
	"github.com/blueprint-hub/hub-server/notification"
	notificationmemory "github.com/blueprint-hub/hub-server/notification/memory"
	"github.com/blueprint-hub/hub-server/ratelimit"
	ratelimitmemory "github.com/blueprint-hub/hub-server/ratelimit/memory"
)

type testEnv struct {
	server   *comment.Server
	approver *comment.Approver
	comments comment.Store
	bus      *event.Bus[model.BlueprintID, *event.CommentEvent]
	client   *moderationmemory.Client
	sent     *notificationmemory.Notifier
	gate     *gate.Gate

	author *account.User
	admin  *account.User

	blueprint *blueprint.Blueprint
}

func setup(t *testing.T, cfg gate.Config, client *moderationmemory.Client) *testEnv {
	ctx := context.Background()
	log := zap.NewNop()

	accounts := accountmemory.NewInMemory()
	blueprints := blueprintmemory.NewInMemory()
	limiter := ratelimitmemory.NewLimiter()
	t.Cleanup(limiter.Close)

	env := &testEnv{
		comments: commentmemory.NewInMemory(),
		bus:      event.NewCommentBus(),
		client:   client,
		sent:     notificationmemory.NewNotifier(),
		author:   &account.User{ID: model.MustGenerateUserID(), Username: "builder"},
		admin:    &account.User{ID: model.MustGenerateUserID(), Username: "moderator", IsAdmin: true},
		blueprint: &blueprint.Blueprint{
			ID:      model.MustGenerateBlueprintID(),
			OwnerID: model.MustGenerateUserID(),
			Title:   "Starter base",
			Status:  blueprint.StatusPublished,
		},
	}
	require.NoError(t, accounts.CreateUser(ctx, env.author))
	require.NoError(t, accounts.CreateUser(ctx, env.admin))
	require.NoError(t, blueprints.CreateBlueprint(ctx, env.blueprint))

	cfg.ReviewURLBase = "https://hub.example.com/admin"
	env.gate = gate.New(
		log,
		cfg,
		moderation.New(log, client),
		notification.NewModeratorNotifier(log, accounts, env.sent),
	)

	env.approver = comment.NewApprover(log, env.gate, env.comments, blueprints, accounts)
	env.bus.AddHandler(env.approver)

	env.server = comment.NewServer(log, env.comments, blueprints, limiter, env.bus)
	return env
}

func (e *testEnv) create(t *testing.T, author *account.User, body, remoteAddr string) *comment.Comment {
	c, err := e.server.Create(context.Background(), author, e.blueprint.ID, body, remoteAddr)
	require.NoError(t, err)
	require.False(t, c.IsApproved)

	e.bus.Wait()

	stored, err := e.comments.GetComment(context.Background(), c.ID)
	require.NoError(t, err)
	return stored
}

// notices returns what administrators were sent once delivery has settled.
func (e *testEnv) notices() []notificationmemory.Sent {
	e.gate.Wait()
	return e.sent.Sent()
}

func TestComment_ApprovedWhenPassing(t *testing.T) {
	env := setup(t, gate.Config{Enabled: true}, moderationmemory.NewClient(false))

	c := env.create(t, env.author, "Nice layout", "10.0.0.1")
	require.True(t, c.IsApproved)
	require.Equal(t, env.author.ID, *c.AuthorID)
	require.Equal(t, 1, env.client.Calls())
	require.Empty(t, env.notices())

	public, err := env.server.List(context.Background(), nil, env.blueprint.ID)
	require.NoError(t, err)
	require.Len(t, public, 1)
}

func TestComment_HeldWhenFlagged(t *testing.T) {
	env := setup(t, gate.Config{Enabled: true}, moderationmemory.NewClient(true))

	c := env.create(t, env.author, "Bad", "10.0.0.1")
	require.False(t, c.IsApproved)

	sent := env.notices()
	require.Len(t, sent, 1)
	require.Equal(t, env.admin.ID, sent[0].Recipient.ID)

	notice := sent[0].Notice
	require.Equal(t, "comment", notice.ContentType)
	require.Equal(t, "Starter base", notice.ContentTitle)
	require.Equal(t, env.author.ID, notice.Author.ID)
	require.Empty(t, notice.ReviewURL)
	require.Len(t, notice.FlaggedTexts, 1)
	require.Equal(t, moderation.Text{Text: "Bad", Label: "Comment"}, notice.FlaggedTexts[0].Text)

	public, err := env.server.List(context.Background(), nil, env.blueprint.ID)
	require.NoError(t, err)
	require.Empty(t, public)

	all, err := env.server.List(context.Background(), env.admin, env.blueprint.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.ErrorIs(t, env.server.Approve(context.Background(), env.author, c.ID), account.ErrPermissionDenied)
	require.NoError(t, env.server.Approve(context.Background(), env.admin, c.ID))

	public, err = env.server.List(context.Background(), nil, env.blueprint.ID)
	require.NoError(t, err)
	require.Len(t, public, 1)
}

func TestComment_AnonymousFlagged(t *testing.T) {
	env := setup(t, gate.Config{Enabled: true}, moderationmemory.NewClient(true))

	c := env.create(t, nil, "Bad", "10.0.0.1")
	require.False(t, c.IsApproved)
	require.Nil(t, c.AuthorID)

	sent := env.notices()
	require.Len(t, sent, 1)
	require.Nil(t, sent[0].Notice.Author)
	require.Equal(t, "Anonymous", sent[0].Notice.AuthorName())
}

func TestComment_ApprovedWhenDisabled(t *testing.T) {
	env := setup(t, gate.Config{Enabled: false}, moderationmemory.NewClient(true))

	c := env.create(t, env.author, "Bad", "10.0.0.1")
	require.True(t, c.IsApproved)
	require.Equal(t, 0, env.client.Calls())
	require.Empty(t, env.notices())
}

func TestComment_ApprovedWhenServiceFails(t *testing.T) {
	env := setup(t, gate.Config{Enabled: true}, moderationmemory.NewFailingClient(errors.New("connection refused")))

	c := env.create(t, env.author, "Nice layout", "10.0.0.1")
	require.True(t, c.IsApproved)
	require.Equal(t, 1, env.client.Calls())
}

func TestComment_HeldUnderRejectPolicy(t *testing.T) {
	env := setup(t, gate.Config{
		Enabled:  true,
		Policies: map[gate.ContentType]gate.Policy{gate.ContentTypeComment: gate.PolicyReject},
	}, moderationmemory.NewClient(true))

	c := env.create(t, env.author, "Bad", "10.0.0.1")
	require.False(t, c.IsApproved)
	require.Len(t, env.notices(), 1)
}

func TestComment_RateLimitedBeforeModeration(t *testing.T) {
	env := setup(t, gate.Config{Enabled: true}, moderationmemory.NewClient(false))
	ctx := context.Background()

	env.create(t, env.author, "First", "10.0.0.1")

	_, err := env.server.Create(ctx, env.author, env.blueprint.ID, "Second", "10.0.0.2")
	require.ErrorIs(t, err, ratelimit.ErrRateLimited)
	env.bus.Wait()
	require.Equal(t, 1, env.client.Calls())

	// Anonymous comments are limited per address
	env.create(t, nil, "Anonymous", "10.0.0.1")
	_, err = env.server.Create(ctx, nil, env.blueprint.ID, "Again", "10.0.0.1")
	require.ErrorIs(t, err, ratelimit.ErrRateLimited)
	env.create(t, nil, "Elsewhere", "10.0.0.3")
}

func TestComment_Validation(t *testing.T) {
	env := setup(t, gate.Config{Enabled: true}, moderationmemory.NewClient(false))
	ctx := context.Background()

	_, err := env.server.Create(ctx, env.author, env.blueprint.ID, "   ", "10.0.0.1")
	require.ErrorIs(t, err, comment.ErrBodyRequired)

	_, err = env.server.Create(ctx, env.author, model.MustGenerateBlueprintID(), "Nice layout", "10.0.0.1")
	require.ErrorIs(t, err, blueprint.ErrNotFound)

	// Neither attempt counted against the rate limit
	env.create(t, env.author, "Nice layout", "10.0.0.1")
}

func TestApprover_IgnoresApprovedAndMissing(t *testing.T) {
	env := setup(t, gate.Config{Enabled: true}, moderationmemory.NewClient(true))
	ctx := context.Background()

	c := &comment.Comment{
		ID:          model.MustGenerateCommentID(),
		BlueprintID: env.blueprint.ID,
		Body:        "Bad",
		IsApproved:  true,
	}
	require.NoError(t, env.comments.CreateComment(ctx, c))

	require.NoError(t, env.approver.Approve(ctx, c.ID))
	require.Equal(t, 0, env.client.Calls())

	require.ErrorIs(t, env.approver.Approve(ctx, model.MustGenerateCommentID()), comment.ErrNotFound)
}
