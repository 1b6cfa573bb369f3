package blob

import (
	"context"
	"errors"
	"time"

	"github.com/blueprint-hub/hub-server/model"
)

var (
	ErrExists   = errors.New("blob already exists")
	ErrNotFound = errors.New("blob not found")
)

type BlobType int

const (
	BlobTypeUnknown BlobType = iota
	BlobTypeImage
)

// Blob holds blob info
type Blob struct {
	ID          model.BlobID
	OwnerID     model.UserID
	Type        BlobType
	S3URL       string
	Filename    string
	ContentType string
	Size        int64
	Metadata    []byte
	Flagged     bool
	CreatedAt   time.Time
}

// Clone creates a deep copy
func (b *Blob) Clone() *Blob {
	cloned := *b
	if b.Metadata != nil {
		cloned.Metadata = append([]byte(nil), b.Metadata...)
	}
	return &cloned
}

// Store is an interface for blob operations
type Store interface {
	CreateBlob(ctx context.Context, blob *Blob) error
	GetBlob(ctx context.Context, id model.BlobID) (*Blob, error)

	// SetFlagged marks a blob as flagged by moderation.
	SetFlagged(ctx context.Context, id model.BlobID, flagged bool) error
}
