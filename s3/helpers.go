package s3

import (
	"encoding/hex"
	"fmt"
	"net/url"

	"github.com/blueprint-hub/hub-server/model"
)

const (
	BlobPathPrefix = "blobs/"
	S3BaseURL      = "https://%s.s3.%s.amazonaws.com/"
)

// BlobKey returns the object key for a blob. The id is hex encoded so the key
// is URL-safe.
func BlobKey(blobID model.BlobID) string {
	return BlobPathPrefix + hex.EncodeToString(blobID[:])
}

// GenerateS3URLPathForBlob returns the public URL of a blob object.
func GenerateS3URLPathForBlob(bucket, region string, blobID model.BlobID) string {
	return fmt.Sprintf(S3BaseURL, bucket, region) + url.PathEscape(BlobKey(blobID))
}
