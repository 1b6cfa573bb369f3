package tests

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blueprint-hub/hub-server/account"
	"github.com/blueprint-hub/hub-server/blob"
	"github.com/blueprint-hub/hub-server/model"
	"github.com/blueprint-hub/hub-server/moderation"
	"github.com/blueprint-hub/hub-server/s3"
)

func RunUploaderTests(t *testing.T, s blob.Store, s3Store s3.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s blob.Store, s3Store s3.Store){
		testUploadImage,
		testUploadIgnoresDeclaredType,
		testUploadEmptyImage,
		testDownload,
	} {
		tf(t, s, s3Store)
		teardown()
	}
}

func testPNG(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testUploadImage(t *testing.T, s blob.Store, s3Store s3.Store) {
	ctx := context.Background()
	uploader := blob.NewUploader(zap.NewNop(), s, s3Store, "hub-assets", "us-east-1")

	owner := model.MustGenerateUserID()
	data := testPNG(t)

	b, err := uploader.Upload(ctx, owner, &moderation.Upload{Filename: "layout.png", Data: data})
	require.NoError(t, err)
	require.Equal(t, owner, b.OwnerID)
	require.Equal(t, blob.BlobTypeImage, b.Type)
	require.Equal(t, "layout.png", b.Filename)
	require.Equal(t, "image/png", b.ContentType)
	require.EqualValues(t, len(data), b.Size)
	require.True(t, strings.HasPrefix(b.S3URL, "https://hub-assets.s3.us-east-1.amazonaws.com/"))

	meta, err := blob.ParseImageMetadata(b)
	require.NoError(t, err)
	require.Equal(t, 4, meta.Width)
	require.Equal(t, 2, meta.Height)
	require.NotEmpty(t, meta.BlurHash)

	stored, err := s.GetBlob(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, b.S3URL, stored.S3URL)

	downloaded, err := s3Store.Download(ctx, s3.BlobKey(b.ID))
	require.NoError(t, err)
	require.Equal(t, data, downloaded)
}

func testUploadIgnoresDeclaredType(t *testing.T, s blob.Store, s3Store s3.Store) {
	uploader := blob.NewUploader(zap.NewNop(), s, s3Store, "hub-assets", "us-east-1")

	b, err := uploader.Upload(context.Background(), model.MustGenerateUserID(), &moderation.Upload{
		Filename:    "layout.png",
		ContentType: "application/octet-stream",
		Data:        testPNG(t),
	})
	require.NoError(t, err)
	require.Equal(t, "image/png", b.ContentType)
}

func testUploadEmptyImage(t *testing.T, s blob.Store, s3Store s3.Store) {
	uploader := blob.NewUploader(zap.NewNop(), s, s3Store, "hub-assets", "us-east-1")

	_, err := uploader.Upload(context.Background(), model.MustGenerateUserID(), &moderation.Upload{Filename: "empty.png"})

	var notFound *moderation.ImageNotFoundError
	require.True(t, errors.As(err, &notFound))
}

func testDownload(t *testing.T, s blob.Store, s3Store s3.Store) {
	ctx := context.Background()
	uploader := blob.NewUploader(zap.NewNop(), s, s3Store, "hub-assets", "us-east-1")

	owner := &account.User{ID: model.MustGenerateUserID(), Username: "builder"}
	stranger := &account.User{ID: model.MustGenerateUserID(), Username: "visitor"}
	admin := &account.User{ID: model.MustGenerateUserID(), Username: "moderator", IsAdmin: true}

	data := testPNG(t)
	b, err := uploader.Upload(ctx, owner.ID, &moderation.Upload{Filename: "layout.png", Data: data})
	require.NoError(t, err)

	got, downloaded, err := uploader.Download(ctx, nil, b.ID)
	require.NoError(t, err)
	require.Equal(t, b.ID, got.ID)
	require.Equal(t, data, downloaded)

	// Flagged images are hidden from everyone but the owner and admins
	require.NoError(t, s.SetFlagged(ctx, b.ID, true))

	for _, viewer := range []*account.User{nil, stranger} {
		_, _, err = uploader.Download(ctx, viewer, b.ID)
		require.ErrorIs(t, err, blob.ErrNotFound)
	}
	for _, viewer := range []*account.User{owner, admin} {
		_, downloaded, err = uploader.Download(ctx, viewer, b.ID)
		require.NoError(t, err)
		require.Equal(t, data, downloaded)
	}

	_, _, err = uploader.Download(ctx, nil, model.MustGenerateBlobID())
	require.ErrorIs(t, err, blob.ErrNotFound)

	// A record without an object
	orphan := &blob.Blob{
		ID:          model.MustGenerateBlobID(),
		OwnerID:     owner.ID,
		Type:        blob.BlobTypeImage,
		Filename:    "orphan.png",
		ContentType: "image/png",
	}
	require.NoError(t, s.CreateBlob(ctx, orphan))
	_, _, err = uploader.Download(ctx, nil, orphan.ID)
	require.ErrorIs(t, err, blob.ErrNotFound)
}
