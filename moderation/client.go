package moderation

import (
	"context"
)

type InputType string

const (
	InputTypeText     InputType = "text"
	InputTypeImageURL InputType = "image_url"
)

// Input is a single entry of a moderation call. Exactly one of Text or
// ImageURL is set, depending on Type.
type Input struct {
	Type     InputType
	Text     string
	ImageURL string
}

// Category is a single policy dimension reported for an input.
type Category struct {
	Name     string
	Violated bool
	Score    float64
}

// Result is the outcome for one Input.
type Result struct {
	Flagged    bool
	Categories []Category
}

// Client is implemented by every moderation backend.
type Client interface {
	// Moderate classifies all inputs in a single call. It returns one Result
	// per Input, in the same order.
	//
	// Transport and API failures are reported as *ServiceError.
	Moderate(ctx context.Context, inputs []Input) ([]Result, error)
}
