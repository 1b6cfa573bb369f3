package image

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"net/http"
	"strings"

	"github.com/buckket/go-blurhash"
)

const (
	// Define BlurHash components (commonly 4x4 or 9x4)
	componentsX = 4
	componentsY = 4
)

// Info describes a decoded image.
type Info struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	BlurHash string `json:"blur_hash"`
}

// ProcessImage decodes imageData, retrieves its dimensions and calculates
// a BlurHash placeholder.
func ProcessImage(imageData []byte) (*Info, error) {
	if len(imageData) == 0 {
		return nil, fmt.Errorf("image data is empty")
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()

	blurhashStr, err := blurhash.Encode(componentsX, componentsY, img)
	if err != nil {
		return nil, fmt.Errorf("failed to encode blurhash: %w", err)
	}

	return &Info{
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		BlurHash: blurhashStr,
	}, nil
}

// DetectContentType returns the MIME type of imageData, or an empty string if
// it is not a recognised image.
func DetectContentType(imageData []byte) string {
	if len(imageData) == 0 {
		return ""
	}

	if _, format, err := image.DecodeConfig(bytes.NewReader(imageData)); err == nil {
		return "image/" + format
	}

	// Formats without a registered decoder, e.g. webp or bmp
	if contentType := http.DetectContentType(imageData); strings.HasPrefix(contentType, "image/") {
		return contentType
	}
	return ""
}

// DefaultContentType is assumed for image bytes of an unknown format.
const DefaultContentType = "image/jpeg"

// ResolveContentType returns the MIME type to record for imageData. The type
// sniffed from the bytes wins; a client-declared type is only used when it
// names an image, and anything else falls back to DefaultContentType.
func ResolveContentType(declared string, imageData []byte) string {
	if contentType := DetectContentType(imageData); contentType != "" {
		return contentType
	}
	if declared = strings.ToLower(strings.TrimSpace(declared)); strings.HasPrefix(declared, "image/") {
		return declared
	}
	return DefaultContentType
}
