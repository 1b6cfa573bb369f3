package s3

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blueprint-hub/hub-server/model"
)

func TestGenerateS3URLPathForBlob(t *testing.T) {
	var id model.BlobID
	id[0] = 0xab
	id[31] = 0x01

	key := BlobKey(id)
	require.True(t, strings.HasPrefix(key, "blobs/ab"))
	require.True(t, strings.HasSuffix(key, "01"))
	require.Len(t, key, len(BlobPathPrefix)+64)

	url := GenerateS3URLPathForBlob("hub-assets", "us-east-1", id)
	require.Equal(t, "https://hub-assets.s3.us-east-1.amazonaws.com/blobs%2F"+key[len(BlobPathPrefix):], url)
}
