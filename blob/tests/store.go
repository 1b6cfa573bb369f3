package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blueprint-hub/hub-server/blob"
	"github.com/blueprint-hub/hub-server/model"
)

func RunStoreTests(t *testing.T, s blob.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s blob.Store){
		testCreateAndGet,
		testCreateDuplicate,
		testSetFlagged,
	} {
		tf(t, s)
		teardown()
	}
}

func testCreateAndGet(t *testing.T, s blob.Store) {
	ctx := context.Background()

	blobID := model.MustGenerateBlobID()
	userID := model.MustGenerateUserID()

	// Attempt to retrieve a non-existent blob
	_, err := s.GetBlob(ctx, blobID)
	require.ErrorIs(t, err, blob.ErrNotFound)

	now := time.Now()
	testBlob := &blob.Blob{
		ID:          blobID,
		OwnerID:     userID,
		Type:        blob.BlobTypeImage,
		S3URL:       "s3://test-bucket/test-key",
		Filename:    "layout.png",
		ContentType: "image/png",
		Size:        12345,
		Metadata:    []byte(`{"version":0}`),
		Flagged:     false,
		CreatedAt:   now,
	}
	require.NoError(t, s.CreateBlob(ctx, testBlob))

	got, err := s.GetBlob(ctx, blobID)
	require.NoError(t, err)
	require.Equal(t, testBlob.ID, got.ID)
	require.Equal(t, testBlob.OwnerID, got.OwnerID)
	require.Equal(t, testBlob.Type, got.Type)
	require.Equal(t, testBlob.S3URL, got.S3URL)
	require.Equal(t, testBlob.Filename, got.Filename)
	require.Equal(t, testBlob.ContentType, got.ContentType)
	require.Equal(t, testBlob.Size, got.Size)
	require.Equal(t, testBlob.Metadata, got.Metadata)
	require.Equal(t, testBlob.Flagged, got.Flagged)
	require.WithinDuration(t, testBlob.CreatedAt, got.CreatedAt, time.Second)
}

func testCreateDuplicate(t *testing.T, s blob.Store) {
	ctx := context.Background()

	testBlob := &blob.Blob{
		ID:          model.MustGenerateBlobID(),
		OwnerID:     model.MustGenerateUserID(),
		Type:        blob.BlobTypeImage,
		S3URL:       "s3://image-bucket/image-key",
		Filename:    "a.jpg",
		ContentType: "image/jpeg",
		Size:        999,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, s.CreateBlob(ctx, testBlob))

	err := s.CreateBlob(ctx, testBlob)
	require.ErrorIs(t, err, blob.ErrExists)
}

func testSetFlagged(t *testing.T, s blob.Store) {
	ctx := context.Background()

	blobID := model.MustGenerateBlobID()
	require.ErrorIs(t, s.SetFlagged(ctx, blobID, true), blob.ErrNotFound)

	require.NoError(t, s.CreateBlob(ctx, &blob.Blob{
		ID:          blobID,
		OwnerID:     model.MustGenerateUserID(),
		Type:        blob.BlobTypeImage,
		S3URL:       "s3://image-bucket/flagged",
		Filename:    "flagged.jpg",
		ContentType: "image/jpeg",
		Size:        10,
		CreatedAt:   time.Now(),
	}))

	require.NoError(t, s.SetFlagged(ctx, blobID, true))

	got, err := s.GetBlob(ctx, blobID)
	require.NoError(t, err)
	require.True(t, got.Flagged)
}
