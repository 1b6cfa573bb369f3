package comment

import (
	"context"
	"errors"
	"time"

	"github.com/blueprint-hub/hub-server/model"
	"github.com/blueprint-hub/hub-server/query"
)

var (
	ErrExists   = errors.New("comment already exists")
	ErrNotFound = errors.New("comment not found")
)

type Comment struct {
	ID          model.CommentID   `json:"id"`
	BlueprintID model.BlueprintID `json:"blueprint_id"`

	// AuthorID is nil for anonymous comments.
	AuthorID *model.UserID `json:"author_id"`

	Body       string    `json:"body"`
	IsApproved bool      `json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
}

func (c *Comment) Clone() *Comment {
	cloned := *c
	if c.AuthorID != nil {
		authorID := *c.AuthorID
		cloned.AuthorID = &authorID
	}
	return &cloned
}

type Store interface {
	// CreateComment stores a new comment.
	//
	// ErrExists is returned if the id is taken.
	CreateComment(ctx context.Context, c *Comment) error

	// GetComment returns the comment, or ErrNotFound.
	GetComment(ctx context.Context, id model.CommentID) (*Comment, error)

	// SetApproved changes whether a comment is publicly visible.
	SetApproved(ctx context.Context, id model.CommentID, approved bool) error

	// GetComments returns the comments on a blueprint by creation time.
	GetComments(ctx context.Context, blueprintID model.BlueprintID, approvedOnly bool, opts ...query.Option) ([]*Comment, error)
}
