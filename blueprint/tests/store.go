package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blueprint-hub/hub-server/blueprint"
	"github.com/blueprint-hub/hub-server/model"
	"github.com/blueprint-hub/hub-server/query"
)

func RunStoreTests(t *testing.T, s blueprint.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s blueprint.Store){
		testCreateAndGet,
		testUpdate,
		testSetStatus,
		testListByStatus,
	} {
		tf(t, s)
		teardown()
	}
}

func newBlueprint(title string, status blueprint.Status, createdAt time.Time) *blueprint.Blueprint {
	return &blueprint.Blueprint{
		ID:          model.MustGenerateBlueprintID(),
		OwnerID:     model.MustGenerateUserID(),
		Title:       title,
		Description: "A description of " + title,
		Status:      status,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func testCreateAndGet(t *testing.T, s blueprint.Store) {
	ctx := context.Background()

	expected := newBlueprint("Smelter", blueprint.StatusPublished, time.Now())
	expected.ImageIDs = []model.BlobID{model.MustGenerateBlobID(), model.MustGenerateBlobID()}

	_, err := s.GetBlueprint(ctx, expected.ID)
	require.ErrorIs(t, err, blueprint.ErrNotFound)

	require.NoError(t, s.CreateBlueprint(ctx, expected))
	require.ErrorIs(t, s.CreateBlueprint(ctx, expected), blueprint.ErrExists)

	actual, err := s.GetBlueprint(ctx, expected.ID)
	require.NoError(t, err)
	require.Equal(t, expected.ID, actual.ID)
	require.Equal(t, expected.OwnerID, actual.OwnerID)
	require.Equal(t, expected.Title, actual.Title)
	require.Equal(t, expected.Description, actual.Description)
	require.Equal(t, expected.Status, actual.Status)
	require.Equal(t, expected.ImageIDs, actual.ImageIDs)
	require.WithinDuration(t, expected.CreatedAt, actual.CreatedAt, time.Second)
}

func testUpdate(t *testing.T, s blueprint.Store) {
	ctx := context.Background()

	b := newBlueprint("Smelter", blueprint.StatusPublished, time.Now())
	require.ErrorIs(t, s.UpdateBlueprint(ctx, b), blueprint.ErrNotFound)
	require.NoError(t, s.CreateBlueprint(ctx, b))

	b.Title = "Bigger smelter"
	b.Description = ""
	b.Status = blueprint.StatusNeedsReview
	b.ImageIDs = []model.BlobID{model.MustGenerateBlobID()}
	b.UpdatedAt = time.Now().Add(time.Minute)
	require.NoError(t, s.UpdateBlueprint(ctx, b))

	actual, err := s.GetBlueprint(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, "Bigger smelter", actual.Title)
	require.Empty(t, actual.Description)
	require.Equal(t, blueprint.StatusNeedsReview, actual.Status)
	require.Equal(t, b.ImageIDs, actual.ImageIDs)
	require.WithinDuration(t, b.UpdatedAt, actual.UpdatedAt, time.Second)

	// Removing every image
	b.ImageIDs = nil
	require.NoError(t, s.UpdateBlueprint(ctx, b))

	actual, err = s.GetBlueprint(ctx, b.ID)
	require.NoError(t, err)
	require.Empty(t, actual.ImageIDs)
}

func testSetStatus(t *testing.T, s blueprint.Store) {
	ctx := context.Background()

	b := newBlueprint("Smelter", blueprint.StatusNeedsReview, time.Now())
	require.ErrorIs(t, s.SetStatus(ctx, b.ID, blueprint.StatusPublished), blueprint.ErrNotFound)
	require.NoError(t, s.CreateBlueprint(ctx, b))

	require.NoError(t, s.SetStatus(ctx, b.ID, blueprint.StatusPublished))

	actual, err := s.GetBlueprint(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, blueprint.StatusPublished, actual.Status)
}

func testListByStatus(t *testing.T, s blueprint.Store) {
	ctx := context.Background()

	start := time.Now().Add(-time.Hour)

	var pending []*blueprint.Blueprint
	for i := 0; i < 5; i++ {
		b := newBlueprint("Pending", blueprint.StatusNeedsReview, start.Add(time.Duration(i)*time.Minute))
		require.NoError(t, s.CreateBlueprint(ctx, b))
		pending = append(pending, b)
	}
	require.NoError(t, s.CreateBlueprint(ctx, newBlueprint("Published", blueprint.StatusPublished, start)))

	actual, err := s.ListByStatus(ctx, blueprint.StatusNeedsReview)
	require.NoError(t, err)
	require.Len(t, actual, 5)
	for i := range pending {
		require.Equal(t, pending[i].ID, actual[i].ID)
	}

	actual, err = s.ListByStatus(ctx, blueprint.StatusNeedsReview, query.WithDescending(), query.WithLimit(2))
	require.NoError(t, err)
	require.Len(t, actual, 2)
	require.Equal(t, pending[4].ID, actual[0].ID)
	require.Equal(t, pending[3].ID, actual[1].ID)

	actual, err = s.ListByStatus(ctx, blueprint.StatusPublished)
	require.NoError(t, err)
	require.Len(t, actual, 1)
}
