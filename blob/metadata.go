package blob

import (
	"encoding/json"
	"errors"

	"github.com/blueprint-hub/hub-server/image"
)

// ImageMetadata is stored alongside image blobs.
type ImageMetadata struct {
	Version int `json:"version"`
	image.Info
}

func newMetadata(blobType BlobType, data []byte) ([]byte, error) {
	switch blobType {
	case BlobTypeImage:
		meta := ImageMetadata{Version: 0}

		// Formats we cannot decode are stored without dimensions
		if info, err := image.ProcessImage(data); err == nil {
			meta.Info = *info
		}

		metadataBytes, err := json.Marshal(meta)
		if err != nil {
			return nil, errors.New("failed to marshal image metadata: " + err.Error())
		}
		return metadataBytes, nil
	default:
		return nil, errors.New("failed to process metadata: unknown blob type")
	}
}

// ParseImageMetadata decodes the metadata of an image blob.
func ParseImageMetadata(b *Blob) (*ImageMetadata, error) {
	if b.Type != BlobTypeImage {
		return nil, errors.New("blob is not an image")
	}

	var meta ImageMetadata
	if err := json.Unmarshal(b.Metadata, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
