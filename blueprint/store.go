package blueprint

import (
	"context"
	"errors"
	"time"

	"github.com/blueprint-hub/hub-server/model"
	"github.com/blueprint-hub/hub-server/query"
)

var (
	ErrExists   = errors.New("blueprint already exists")
	ErrNotFound = errors.New("blueprint not found")
)

type Status string

const (
	StatusPublished   Status = "published"
	StatusNeedsReview Status = "needs_review"
)

type Blueprint struct {
	ID          model.BlueprintID `json:"id"`
	OwnerID     model.UserID      `json:"owner_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      Status            `json:"status"`
	ImageIDs    []model.BlobID    `json:"image_ids"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (b *Blueprint) Clone() *Blueprint {
	cloned := *b
	cloned.ImageIDs = append([]model.BlobID(nil), b.ImageIDs...)
	return &cloned
}

type Store interface {
	// CreateBlueprint stores a new blueprint.
	//
	// ErrExists is returned if the id is taken.
	CreateBlueprint(ctx context.Context, b *Blueprint) error

	// GetBlueprint returns the blueprint, or ErrNotFound.
	GetBlueprint(ctx context.Context, id model.BlueprintID) (*Blueprint, error)

	// UpdateBlueprint replaces the title, description, status and images of an
	// existing blueprint.
	//
	// ErrNotFound is returned if the blueprint does not exist.
	UpdateBlueprint(ctx context.Context, b *Blueprint) error

	// SetStatus changes the status of a blueprint.
	SetStatus(ctx context.Context, id model.BlueprintID, status Status) error

	// ListByStatus returns blueprints with the given status, by creation time.
	ListByStatus(ctx context.Context, status Status, opts ...query.Option) ([]*Blueprint, error)
}
