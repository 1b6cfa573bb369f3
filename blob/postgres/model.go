package postgres

import (
	"time"

	pg "github.com/blueprint-hub/hub-server/database/postgres"

	"github.com/blueprint-hub/hub-server/blob"
	"github.com/blueprint-hub/hub-server/model"
)

const blobTable = "hub_blobs"

// blobModel maps to the hub_blobs table
type blobModel struct {
	ID          string    `db:"id"`
	OwnerID     string    `db:"ownerId"`
	Type        int       `db:"type"`
	S3URL       string    `db:"s3Url"`
	Filename    string    `db:"filename"`
	ContentType string    `db:"contentType"`
	Size        int64     `db:"size"`
	Metadata    []byte    `db:"metadata"`
	Flagged     bool      `db:"flagged"`
	CreatedAt   time.Time `db:"createdAt"`
}

func toBlobModel(b *blob.Blob) *blobModel {
	return &blobModel{
		ID:          pg.Encode(b.ID.Bytes(), pg.Base58),
		OwnerID:     pg.Encode(b.OwnerID.Bytes()),
		Type:        int(b.Type),
		S3URL:       b.S3URL,
		Filename:    b.Filename,
		ContentType: b.ContentType,
		Size:        b.Size,
		Metadata:    b.Metadata,
		Flagged:     b.Flagged,
		CreatedAt:   b.CreatedAt,
	}
}

func fromBlobModel(m *blobModel) (*blob.Blob, error) {
	decodedID, err := pg.Decode(m.ID)
	if err != nil {
		return nil, err
	}
	id, err := model.BlobIDFromBytes(decodedID)
	if err != nil {
		return nil, err
	}

	decodedOwner, err := pg.Decode(m.OwnerID)
	if err != nil {
		return nil, err
	}
	owner, err := model.UserIDFromBytes(decodedOwner)
	if err != nil {
		return nil, err
	}

	return &blob.Blob{
		ID:          id,
		OwnerID:     owner,
		Type:        blob.BlobType(m.Type),
		S3URL:       m.S3URL,
		Filename:    m.Filename,
		ContentType: m.ContentType,
		Size:        m.Size,
		Metadata:    m.Metadata,
		Flagged:     m.Flagged,
		CreatedAt:   m.CreatedAt,
	}, nil
}
