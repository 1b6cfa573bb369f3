package postgres

import (
	"database/sql"
	"time"

	pg "github.com/blueprint-hub/hub-server/database/postgres"

	"github.com/blueprint-hub/hub-server/comment"
	"github.com/blueprint-hub/hub-server/model"
)

const (
	commentTable = "hub_comments"

	allCommentFields = `"id", "blueprintId", "authorId", "body", "isApproved", "createdAt"`
)

type commentModel struct {
	ID          string         `db:"id"`
	BlueprintID string         `db:"blueprintId"`
	AuthorID    sql.NullString `db:"authorId"`
	Body        string         `db:"body"`
	IsApproved  bool           `db:"isApproved"`
	CreatedAt   time.Time      `db:"createdAt"`
}

func toCommentModel(c *comment.Comment) *commentModel {
	var authorID *string
	if c.AuthorID != nil {
		encoded := pg.Encode(c.AuthorID.Bytes())
		authorID = &encoded
	}

	return &commentModel{
		ID:          pg.Encode(c.ID.Bytes()),
		BlueprintID: pg.Encode(c.BlueprintID.Bytes()),
		AuthorID:    pg.NullString(authorID),
		Body:        c.Body,
		IsApproved:  c.IsApproved,
		CreatedAt:   c.CreatedAt,
	}
}

func fromCommentModel(m *commentModel) (*comment.Comment, error) {
	decodedID, err := pg.Decode(m.ID)
	if err != nil {
		return nil, err
	}
	id, err := model.CommentIDFromBytes(decodedID)
	if err != nil {
		return nil, err
	}

	decodedBlueprint, err := pg.Decode(m.BlueprintID)
	if err != nil {
		return nil, err
	}
	blueprintID, err := model.BlueprintIDFromBytes(decodedBlueprint)
	if err != nil {
		return nil, err
	}

	var authorID *model.UserID
	if encoded := pg.FromNullString(m.AuthorID); encoded != nil {
		decoded, err := pg.Decode(*encoded)
		if err != nil {
			return nil, err
		}
		userID, err := model.UserIDFromBytes(decoded)
		if err != nil {
			return nil, err
		}
		authorID = &userID
	}

	return &comment.Comment{
		ID:          id,
		BlueprintID: blueprintID,
		AuthorID:    authorID,
		Body:        m.Body,
		IsApproved:  m.IsApproved,
		CreatedAt:   m.CreatedAt,
	}, nil
}
