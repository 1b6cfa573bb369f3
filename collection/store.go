package collection

import (
	"context"
	"errors"
	"time"

	"github.com/blueprint-hub/hub-server/model"
)

var (
	ErrExists   = errors.New("collection already exists")
	ErrNotFound = errors.New("collection not found")
)

type Status string

const (
	StatusPublished   Status = "published"
	StatusNeedsReview Status = "needs_review"
)

type Collection struct {
	ID           model.CollectionID  `json:"id"`
	OwnerID      model.UserID        `json:"owner_id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Status       Status              `json:"status"`
	BlueprintIDs []model.BlueprintID `json:"blueprint_ids"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func (c *Collection) Clone() *Collection {
	cloned := *c
	cloned.BlueprintIDs = append([]model.BlueprintID(nil), c.BlueprintIDs...)
	return &cloned
}

type Store interface {
	// CreateCollection stores a new collection.
	//
	// ErrExists is returned if the id is taken.
	CreateCollection(ctx context.Context, c *Collection) error

	// GetCollection returns the collection, or ErrNotFound.
	GetCollection(ctx context.Context, id model.CollectionID) (*Collection, error)

	// UpdateCollection replaces the title, description, status and blueprints
	// of an existing collection.
	//
	// ErrNotFound is returned if the collection does not exist.
	UpdateCollection(ctx context.Context, c *Collection) error
}
