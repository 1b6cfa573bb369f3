package tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blueprint-hub/hub-server/s3"
)

func RunStoreTests(t *testing.T, s s3.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s s3.Store){
		testUploadAndDownload,
		testDownloadNonExistentKey,
		testOverwriteUpload,
		testDownloadIsolation,
	} {
		tf(t, s)
		teardown()
	}
}

func testUploadAndDownload(t *testing.T, s s3.Store) {
	ctx := context.Background()

	key := "blobs/testKey"
	data := []byte("testData")

	require.NoError(t, s.Upload(ctx, key, data))

	retrievedData, err := s.Download(ctx, key)
	require.NoError(t, err)
	require.Equal(t, data, retrievedData)
}

func testDownloadNonExistentKey(t *testing.T, s s3.Store) {
	data, err := s.Download(context.Background(), "blobs/nonExistentKey")
	require.ErrorIs(t, err, s3.ErrNotFound)
	require.Nil(t, data)
}

func testOverwriteUpload(t *testing.T, s s3.Store) {
	ctx := context.Background()

	key := "blobs/overwriteKey"

	require.NoError(t, s.Upload(ctx, key, []byte("initialData")))
	require.NoError(t, s.Upload(ctx, key, []byte("newData")))

	retrievedData, err := s.Download(ctx, key)
	require.NoError(t, err)
	require.Equal(t, []byte("newData"), retrievedData)
}

func testDownloadIsolation(t *testing.T, s s3.Store) {
	ctx := context.Background()

	key := "blobs/isolationKey"
	data := []byte("original")

	require.NoError(t, s.Upload(ctx, key, data))
	data[0] = 'X'

	retrievedData, err := s.Download(ctx, key)
	require.NoError(t, err)
	require.Equal(t, []byte("original"), retrievedData)
}
