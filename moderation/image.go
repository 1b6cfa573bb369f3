package moderation

import (
	"context"
	"encoding/base64"
	"errors"
	"os"

	"github.com/blueprint-hub/hub-server/image"
)

// Image is a reference to image bytes that can be submitted for moderation.
type Image interface {
	// Name identifies the image in flagged-content reports.
	Name() string

	// Open returns the image bytes and the declared content type, which may be
	// empty when the source does not declare one.
	Open(ctx context.Context) ([]byte, string, error)
}

// Upload is an image received as part of a request.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (u *Upload) Name() string {
	return u.Filename
}

func (u *Upload) Open(_ context.Context) ([]byte, string, error) {
	if len(u.Data) == 0 {
		return nil, "", &ImageNotFoundError{Image: u.Filename, Err: errors.New("upload is empty")}
	}
	return u.Data, u.ContentType, nil
}

// File is an image on the local filesystem.
type File string

func (f File) Name() string {
	return string(f)
}

func (f File) Open(_ context.Context) ([]byte, string, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return nil, "", &ImageNotFoundError{Image: string(f), Err: err}
	}
	if len(data) == 0 {
		return nil, "", &ImageNotFoundError{Image: string(f), Err: errors.New("file is empty")}
	}
	return data, "", nil
}

// dataURI encodes img as a base64 data URI. The content type is sniffed from
// the bytes; declared types only fill in formats the sniffer does not know.
func dataURI(ctx context.Context, img Image) (string, error) {
	data, contentType, err := img.Open(ctx)
	if err != nil {
		var notFound *ImageNotFoundError
		if errors.As(err, &notFound) {
			return "", err
		}
		return "", &ImageNotFoundError{Image: img.Name(), Err: err}
	}

	contentType = image.ResolveContentType(contentType, data)
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
