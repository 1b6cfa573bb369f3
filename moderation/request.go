package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
)

// Text is a labelled text fragment, e.g. {"My Blueprint", "Title"}.
type Text struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Request accumulates the content of a single moderation pass. A Request is
// not safe for concurrent use and is meant to be discarded after Validate.
type Request struct {
	texts  []Text
	images []Image
}

func NewRequest() *Request {
	return &Request{}
}

// AddText appends a labelled text fragment. Empty text is ignored.
func (r *Request) AddText(text, label string) *Request {
	if text == "" {
		return r
	}
	r.texts = append(r.texts, Text{Text: text, Label: label})
	return r
}

// AddImage appends an image. A nil image is ignored.
func (r *Request) AddImage(img Image) *Request {
	if img == nil {
		return r
	}
	r.images = append(r.images, img)
	return r
}

func (r *Request) AddImages(imgs ...Image) *Request {
	for _, img := range imgs {
		r.AddImage(img)
	}
	return r
}

func (r *Request) Texts() []Text {
	return append([]Text(nil), r.texts...)
}

func (r *Request) Images() []Image {
	return append([]Image(nil), r.images...)
}

func (r *Request) IsEmpty() bool {
	return len(r.texts) == 0 && len(r.images) == 0
}

// payload builds the inputs for a single moderation call: at most one text
// entry holding every fragment, followed by at most one image entry for the
// first image. Remaining images are not submitted.
func (r *Request) payload(ctx context.Context) ([]Input, error) {
	var inputs []Input

	if len(r.texts) > 0 {
		encoded, err := encodeTexts(r.texts)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, Input{Type: InputTypeText, Text: encoded})
	}

	if len(r.images) > 0 {
		uri, err := dataURI(ctx, r.images[0])
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, Input{Type: InputTypeImageURL, ImageURL: uri})
	}

	return inputs, nil
}

// encodeTexts joins fragments as "label: text" lines and JSON encodes the
// result as a single string.
func encodeTexts(texts []Text) (string, error) {
	lines := make([]string, 0, len(texts))
	for _, t := range texts {
		if t.Label == "" {
			lines = append(lines, t.Text)
			continue
		}
		lines = append(lines, t.Label+": "+t.Text)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(strings.Join(lines, "\n")); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
