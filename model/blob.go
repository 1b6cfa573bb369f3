package model

import (
	"crypto/rand"
	"fmt"

	"github.com/mr-tron/base58"
)

// BlobID identifies an uploaded object. Blob ids are random 32 byte values,
// base58 encoded when rendered.
type BlobID [32]byte

func MustGenerateBlobID() BlobID {
	id, err := GenerateBlobID()
	if err != nil {
		panic(fmt.Sprintf("failed to generate blob id: %v", err))
	}

	return id
}

func GenerateBlobID() (BlobID, error) {
	var id BlobID
	if _, err := rand.Read(id[:]); err != nil {
		return BlobID{}, err
	}

	return id, nil
}

func ParseBlobID(s string) (BlobID, error) {
	decoded, err := base58.Decode(s)
	if err != nil {
		return BlobID{}, err
	}
	return BlobIDFromBytes(decoded)
}

func BlobIDFromBytes(b []byte) (BlobID, error) {
	var id BlobID
	if len(b) != len(id) {
		return BlobID{}, fmt.Errorf("invalid blob id length: %d", len(b))
	}
	copy(id[:], b)
	return id, nil
}

func (id BlobID) String() string {
	return base58.Encode(id[:])
}

func (id BlobID) Bytes() []byte {
	return id[:]
}

func BlobIDString(id BlobID) string {
	return id.String()
}
