package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	pg "github.com/blueprint-hub/hub-server/database/postgres"

	"github.com/blueprint-hub/hub-server/blueprint"
	"github.com/blueprint-hub/hub-server/model"
	"github.com/blueprint-hub/hub-server/query"
)

type store struct {
	db *sqlx.DB
}

func NewInPostgres(db *sql.DB) blueprint.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

func (s *store) reset() {
	_, err := s.db.Exec(`DELETE FROM ` + blueprintTable)
	if err != nil {
		panic(err)
	}
}

func (s *store) CreateBlueprint(ctx context.Context, b *blueprint.Blueprint) error {
	return pg.ExecuteInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO `+blueprintTable+` (`+allBlueprintFields+`)
			VALUES (:id, :ownerId, :title, :description, :status, :createdAt, :updatedAt)
		`, toBlueprintModel(b))
		if pg.IsUniqueViolation(err) {
			return blueprint.ErrExists
		} else if err != nil {
			return err
		}

		return insertImages(ctx, tx, b)
	})
}

func (s *store) GetBlueprint(ctx context.Context, id model.BlueprintID) (*blueprint.Blueprint, error) {
	encodedID := pg.Encode(id.Bytes())

	var m blueprintModel
	query := `SELECT ` + allBlueprintFields + ` FROM ` + blueprintTable + ` WHERE "id" = $1`
	err := s.db.GetContext(ctx, &m, query, encodedID)
	if err == sql.ErrNoRows {
		return nil, blueprint.ErrNotFound
	} else if err != nil {
		return nil, err
	}

	images, err := s.getImages(ctx, encodedID)
	if err != nil {
		return nil, err
	}

	return fromBlueprintModel(&m, images)
}

func (s *store) UpdateBlueprint(ctx context.Context, b *blueprint.Blueprint) error {
	m := toBlueprintModel(b)

	return pg.ExecuteInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		res, err := tx.NamedExecContext(ctx, `
			UPDATE `+blueprintTable+`
			SET "title" = :title, "description" = :description, "status" = :status, "updatedAt" = :updatedAt
			WHERE "id" = :id
		`, m)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return blueprint.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM `+imageTable+` WHERE "blueprintId" = $1`, m.ID); err != nil {
			return err
		}
		return insertImages(ctx, tx, b)
	})
}

func (s *store) SetStatus(ctx context.Context, id model.BlueprintID, status blueprint.Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE `+blueprintTable+` SET "status" = $1 WHERE "id" = $2`,
		string(status), pg.Encode(id.Bytes()),
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return blueprint.ErrNotFound
	}
	return nil
}

func (s *store) ListByStatus(ctx context.Context, status blueprint.Status, opts ...query.Option) ([]*blueprint.Blueprint, error) {
	queryOpts := query.ApplyOptions(opts...)

	var models []blueprintModel
	q := fmt.Sprintf(
		`SELECT %s FROM %s WHERE "status" = $1 ORDER BY "createdAt" %s LIMIT $2`,
		allBlueprintFields, blueprintTable, queryOpts.Order.SQL(),
	)
	if err := s.db.SelectContext(ctx, &models, q, string(status), queryOpts.Limit); err != nil {
		return nil, err
	}

	blueprints := make([]*blueprint.Blueprint, 0, len(models))
	for i := range models {
		images, err := s.getImages(ctx, models[i].ID)
		if err != nil {
			return nil, err
		}

		b, err := fromBlueprintModel(&models[i], images)
		if err != nil {
			return nil, err
		}
		blueprints = append(blueprints, b)
	}
	return blueprints, nil
}

func (s *store) getImages(ctx context.Context, encodedID string) ([]imageModel, error) {
	var images []imageModel
	err := s.db.SelectContext(ctx, &images,
		`SELECT "blueprintId", "blobId", "position" FROM `+imageTable+` WHERE "blueprintId" = $1 ORDER BY "position" ASC`,
		encodedID,
	)
	return images, err
}

func insertImages(ctx context.Context, tx *sqlx.Tx, b *blueprint.Blueprint) error {
	for _, image := range toImageModels(b) {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO `+imageTable+` ("blueprintId", "blobId", "position")
			VALUES (:blueprintId, :blobId, :position)
		`, image)
		if err != nil {
			return err
		}
	}
	return nil
}
