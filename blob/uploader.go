package blob

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/blueprint-hub/hub-server/account"
	"github.com/blueprint-hub/hub-server/image"
	"github.com/blueprint-hub/hub-server/model"
	"github.com/blueprint-hub/hub-server/moderation"
	"github.com/blueprint-hub/hub-server/s3"
)

// Uploader stores images in S3 and records them as blobs.
type Uploader struct {
	log     *zap.Logger
	store   Store
	s3Store s3.Store

	bucket string
	region string
}

func NewUploader(log *zap.Logger, store Store, s3Store s3.Store, bucket, region string) *Uploader {
	return &Uploader{
		log:     log,
		store:   store,
		s3Store: s3Store,
		bucket:  bucket,
		region:  region,
	}
}

func (u *Uploader) Upload(ctx context.Context, owner model.UserID, img moderation.Image) (*Blob, error) {
	data, contentType, err := img.Open(ctx)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, &moderation.ImageNotFoundError{Image: img.Name()}
	}
	contentType = image.ResolveContentType(contentType, data)

	blobID, err := model.GenerateBlobID()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate blob id")
	}

	metadata, err := newMetadata(BlobTypeImage, data)
	if err != nil {
		return nil, err
	}

	if err := u.s3Store.Upload(ctx, s3.BlobKey(blobID), data); err != nil {
		u.log.Error("Failed to upload blob to S3", zap.Error(err))
		return nil, errors.Wrap(err, "failed to upload blob")
	}

	b := &Blob{
		ID:          blobID,
		OwnerID:     owner,
		Type:        BlobTypeImage,
		S3URL:       s3.GenerateS3URLPathForBlob(u.bucket, u.region, blobID),
		Filename:    img.Name(),
		ContentType: contentType,
		Size:        int64(len(data)),
		Metadata:    metadata,
		CreatedAt:   time.Now(),
	}
	if err := u.store.CreateBlob(ctx, b); err != nil {
		u.log.Error("Failed to store blob metadata", zap.Error(err))
		return nil, fmt.Errorf("failed to store blob metadata: %w", err)
	}

	return b, nil
}

// Download returns a blob and its bytes. Flagged blobs are only shown to
// their owner and administrators; everyone else gets ErrNotFound. viewer may
// be nil.
func (u *Uploader) Download(ctx context.Context, viewer *account.User, id model.BlobID) (*Blob, []byte, error) {
	b, err := u.store.GetBlob(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if b.Flagged && (viewer == nil || (!viewer.IsAdmin && viewer.ID != b.OwnerID)) {
		return nil, nil, ErrNotFound
	}

	data, err := u.s3Store.Download(ctx, s3.BlobKey(id))
	if errors.Is(err, s3.ErrNotFound) {
		u.log.Warn("Blob has no stored object", zap.String("blob_id", id.String()))
		return nil, nil, ErrNotFound
	} else if err != nil {
		return nil, nil, errors.Wrap(err, "failed to download blob")
	}

	return b, data, nil
}
