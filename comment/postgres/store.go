package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	pg "github.com/blueprint-hub/hub-server/database/postgres"

	"github.com/blueprint-hub/hub-server/comment"
	"github.com/blueprint-hub/hub-server/model"
	"github.com/blueprint-hub/hub-server/query"
)

type store struct {
	db *sqlx.DB
}

func NewInPostgres(db *sql.DB) comment.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

func (s *store) reset() {
	_, err := s.db.Exec(`DELETE FROM ` + commentTable)
	if err != nil {
		panic(err)
	}
}

func (s *store) CreateComment(ctx context.Context, c *comment.Comment) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO `+commentTable+` (`+allCommentFields+`)
		VALUES (:id, :blueprintId, :authorId, :body, :isApproved, :createdAt)
	`, toCommentModel(c))
	if pg.IsUniqueViolation(err) {
		return comment.ErrExists
	}
	return err
}

func (s *store) GetComment(ctx context.Context, id model.CommentID) (*comment.Comment, error) {
	var m commentModel
	err := s.db.GetContext(ctx, &m,
		`SELECT `+allCommentFields+` FROM `+commentTable+` WHERE "id" = $1`,
		pg.Encode(id.Bytes()),
	)
	if err == sql.ErrNoRows {
		return nil, comment.ErrNotFound
	} else if err != nil {
		return nil, err
	}

	return fromCommentModel(&m)
}

func (s *store) SetApproved(ctx context.Context, id model.CommentID, approved bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE `+commentTable+` SET "isApproved" = $1 WHERE "id" = $2`,
		approved, pg.Encode(id.Bytes()),
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return comment.ErrNotFound
	}
	return nil
}

func (s *store) GetComments(ctx context.Context, blueprintID model.BlueprintID, approvedOnly bool, opts ...query.Option) ([]*comment.Comment, error) {
	queryOpts := query.ApplyOptions(opts...)

	approvedClause := ""
	if approvedOnly {
		approvedClause = ` AND "isApproved"`
	}

	var models []commentModel
	q := fmt.Sprintf(
		`SELECT %s FROM %s WHERE "blueprintId" = $1%s ORDER BY "createdAt" %s LIMIT $2`,
		allCommentFields, commentTable, approvedClause, queryOpts.Order.SQL(),
	)
	if err := s.db.SelectContext(ctx, &models, q, pg.Encode(blueprintID.Bytes()), queryOpts.Limit); err != nil {
		return nil, err
	}

	comments := make([]*comment.Comment, 0, len(models))
	for i := range models {
		c, err := fromCommentModel(&models[i])
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, nil
}
