package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blueprint-hub/hub-server/comment"
	"github.com/blueprint-hub/hub-server/model"
	"github.com/blueprint-hub/hub-server/query"
)

func RunStoreTests(t *testing.T, s comment.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s comment.Store){
		testCreateAndGet,
		testAnonymous,
		testSetApproved,
		testGetComments,
	} {
		tf(t, s)
		teardown()
	}
}

func newComment(blueprintID model.BlueprintID, body string, createdAt time.Time) *comment.Comment {
	authorID := model.MustGenerateUserID()
	return &comment.Comment{
		ID:          model.MustGenerateCommentID(),
		BlueprintID: blueprintID,
		AuthorID:    &authorID,
		Body:        body,
		CreatedAt:   createdAt,
	}
}

func testCreateAndGet(t *testing.T, s comment.Store) {
	ctx := context.Background()

	expected := newComment(model.MustGenerateBlueprintID(), "Nice layout", time.Now())

	_, err := s.GetComment(ctx, expected.ID)
	require.ErrorIs(t, err, comment.ErrNotFound)

	require.NoError(t, s.CreateComment(ctx, expected))
	require.ErrorIs(t, s.CreateComment(ctx, expected), comment.ErrExists)

	actual, err := s.GetComment(ctx, expected.ID)
	require.NoError(t, err)
	require.Equal(t, expected.ID, actual.ID)
	require.Equal(t, expected.BlueprintID, actual.BlueprintID)
	require.Equal(t, *expected.AuthorID, *actual.AuthorID)
	require.Equal(t, expected.Body, actual.Body)
	require.False(t, actual.IsApproved)
	require.WithinDuration(t, expected.CreatedAt, actual.CreatedAt, time.Second)
}

func testAnonymous(t *testing.T, s comment.Store) {
	ctx := context.Background()

	expected := newComment(model.MustGenerateBlueprintID(), "Nice layout", time.Now())
	expected.AuthorID = nil
	require.NoError(t, s.CreateComment(ctx, expected))

	actual, err := s.GetComment(ctx, expected.ID)
	require.NoError(t, err)
	require.Nil(t, actual.AuthorID)
}

func testSetApproved(t *testing.T, s comment.Store) {
	ctx := context.Background()

	c := newComment(model.MustGenerateBlueprintID(), "Nice layout", time.Now())
	require.ErrorIs(t, s.SetApproved(ctx, c.ID, true), comment.ErrNotFound)
	require.NoError(t, s.CreateComment(ctx, c))

	require.NoError(t, s.SetApproved(ctx, c.ID, true))
	actual, err := s.GetComment(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, actual.IsApproved)

	require.NoError(t, s.SetApproved(ctx, c.ID, false))
	actual, err = s.GetComment(ctx, c.ID)
	require.NoError(t, err)
	require.False(t, actual.IsApproved)
}

func testGetComments(t *testing.T, s comment.Store) {
	ctx := context.Background()

	blueprintID := model.MustGenerateBlueprintID()
	start := time.Now().Add(-time.Hour)

	var all []*comment.Comment
	for i := 0; i < 4; i++ {
		c := newComment(blueprintID, "Comment", start.Add(time.Duration(i)*time.Minute))
		require.NoError(t, s.CreateComment(ctx, c))
		all = append(all, c)
	}
	require.NoError(t, s.SetApproved(ctx, all[1].ID, true))
	require.NoError(t, s.SetApproved(ctx, all[3].ID, true))

	// On another blueprint
	require.NoError(t, s.CreateComment(ctx, newComment(model.MustGenerateBlueprintID(), "Elsewhere", start)))

	actual, err := s.GetComments(ctx, blueprintID, false)
	require.NoError(t, err)
	require.Len(t, actual, 4)
	for i := range all {
		require.Equal(t, all[i].ID, actual[i].ID)
	}

	actual, err = s.GetComments(ctx, blueprintID, true)
	require.NoError(t, err)
	require.Len(t, actual, 2)
	require.Equal(t, all[1].ID, actual[0].ID)
	require.Equal(t, all[3].ID, actual[1].ID)

	actual, err = s.GetComments(ctx, blueprintID, false, query.WithDescending(), query.WithLimit(3))
	require.NoError(t, err)
	require.Len(t, actual, 3)
	require.Equal(t, all[3].ID, actual[0].ID)
	require.Equal(t, all[1].ID, actual[2].ID)

	actual, err = s.GetComments(ctx, model.MustGenerateBlueprintID(), false)
	require.NoError(t, err)
	require.Empty(t, actual)
}
