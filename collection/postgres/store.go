package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	pg "github.com/blueprint-hub/hub-server/database/postgres"

	"github.com/blueprint-hub/hub-server/collection"
	"github.com/blueprint-hub/hub-server/model"
)

type store struct {
	db *sqlx.DB
}

func NewInPostgres(db *sql.DB) collection.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

func (s *store) reset() {
	_, err := s.db.Exec(`DELETE FROM ` + collectionTable)
	if err != nil {
		panic(err)
	}
}

func (s *store) CreateCollection(ctx context.Context, c *collection.Collection) error {
	return pg.ExecuteInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO `+collectionTable+` (`+allCollectionFields+`)
			VALUES (:id, :ownerId, :title, :description, :status, :createdAt, :updatedAt)
		`, toCollectionModel(c))
		if pg.IsUniqueViolation(err) {
			return collection.ErrExists
		} else if err != nil {
			return err
		}

		return insertMembers(ctx, tx, c)
	})
}

func (s *store) GetCollection(ctx context.Context, id model.CollectionID) (*collection.Collection, error) {
	encodedID := pg.Encode(id.Bytes())

	var m collectionModel
	err := s.db.GetContext(ctx, &m,
		`SELECT `+allCollectionFields+` FROM `+collectionTable+` WHERE "id" = $1`,
		encodedID,
	)
	if err == sql.ErrNoRows {
		return nil, collection.ErrNotFound
	} else if err != nil {
		return nil, err
	}

	var members []memberModel
	err = s.db.SelectContext(ctx, &members,
		`SELECT "collectionId", "blueprintId", "position" FROM `+memberTable+` WHERE "collectionId" = $1 ORDER BY "position" ASC`,
		encodedID,
	)
	if err != nil {
		return nil, err
	}

	return fromCollectionModel(&m, members)
}

func (s *store) UpdateCollection(ctx context.Context, c *collection.Collection) error {
	m := toCollectionModel(c)

	return pg.ExecuteInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		res, err := tx.NamedExecContext(ctx, `
			UPDATE `+collectionTable+`
			SET "title" = :title, "description" = :description, "status" = :status, "updatedAt" = :updatedAt
			WHERE "id" = :id
		`, m)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return collection.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM `+memberTable+` WHERE "collectionId" = $1`, m.ID); err != nil {
			return err
		}
		return insertMembers(ctx, tx, c)
	})
}

func insertMembers(ctx context.Context, tx *sqlx.Tx, c *collection.Collection) error {
	for _, member := range toMemberModels(c) {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO `+memberTable+` ("collectionId", "blueprintId", "position")
			VALUES (:collectionId, :blueprintId, :position)
		`, member)
		if err != nil {
			return err
		}
	}
	return nil
}
