package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blueprint-hub/hub-server/collection"
	"github.com/blueprint-hub/hub-server/model"
)

func RunStoreTests(t *testing.T, s collection.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s collection.Store){
		testCreateAndGet,
		testUpdate,
	} {
		tf(t, s)
		teardown()
	}
}

func newCollection(title string) *collection.Collection {
	now := time.Now()
	return &collection.Collection{
		ID:          model.MustGenerateCollectionID(),
		OwnerID:     model.MustGenerateUserID(),
		Title:       title,
		Description: "Everything needed for " + title,
		Status:      collection.StatusPublished,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func testCreateAndGet(t *testing.T, s collection.Store) {
	ctx := context.Background()

	expected := newCollection("Early game")
	expected.BlueprintIDs = []model.BlueprintID{
		model.MustGenerateBlueprintID(),
		model.MustGenerateBlueprintID(),
		model.MustGenerateBlueprintID(),
	}

	_, err := s.GetCollection(ctx, expected.ID)
	require.ErrorIs(t, err, collection.ErrNotFound)

	require.NoError(t, s.CreateCollection(ctx, expected))
	require.ErrorIs(t, s.CreateCollection(ctx, expected), collection.ErrExists)

	actual, err := s.GetCollection(ctx, expected.ID)
	require.NoError(t, err)
	require.Equal(t, expected.ID, actual.ID)
	require.Equal(t, expected.OwnerID, actual.OwnerID)
	require.Equal(t, expected.Title, actual.Title)
	require.Equal(t, expected.Description, actual.Description)
	require.Equal(t, expected.Status, actual.Status)
	require.Equal(t, expected.BlueprintIDs, actual.BlueprintIDs)
	require.WithinDuration(t, expected.CreatedAt, actual.CreatedAt, time.Second)

	// Mutating the caller's copy does not leak into the store
	expected.BlueprintIDs[0] = model.MustGenerateBlueprintID()
	actual, err = s.GetCollection(ctx, expected.ID)
	require.NoError(t, err)
	require.NotEqual(t, expected.BlueprintIDs[0], actual.BlueprintIDs[0])
}

func testUpdate(t *testing.T, s collection.Store) {
	ctx := context.Background()

	c := newCollection("Early game")
	require.ErrorIs(t, s.UpdateCollection(ctx, c), collection.ErrNotFound)
	require.NoError(t, s.CreateCollection(ctx, c))

	c.Title = "Mid game"
	c.Description = ""
	c.Status = collection.StatusNeedsReview
	c.BlueprintIDs = []model.BlueprintID{model.MustGenerateBlueprintID()}
	c.UpdatedAt = time.Now().Add(time.Minute)
	require.NoError(t, s.UpdateCollection(ctx, c))

	actual, err := s.GetCollection(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, "Mid game", actual.Title)
	require.Empty(t, actual.Description)
	require.Equal(t, collection.StatusNeedsReview, actual.Status)
	require.Equal(t, c.BlueprintIDs, actual.BlueprintIDs)
	require.WithinDuration(t, c.UpdatedAt, actual.UpdatedAt, time.Second)

	c.BlueprintIDs = nil
	require.NoError(t, s.UpdateCollection(ctx, c))

	actual, err = s.GetCollection(ctx, c.ID)
	require.NoError(t, err)
	require.Empty(t, actual.BlueprintIDs)
}
