package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	pg "github.com/blueprint-hub/hub-server/database/postgres"

	"github.com/blueprint-hub/hub-server/blob"
	"github.com/blueprint-hub/hub-server/model"
)

type store struct {
	db *sqlx.DB
}

func NewInPostgres(db *sql.DB) blob.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

func (s *store) reset() {
	_, err := s.db.Exec(`DELETE FROM ` + blobTable)
	if err != nil {
		panic(err)
	}
}

func (s *store) CreateBlob(ctx context.Context, b *blob.Blob) error {
	m := toBlobModel(b)

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO `+blobTable+` ("id", "ownerId", "type", "s3Url", "filename", "contentType", "size", "metadata", "flagged", "createdAt")
		VALUES (:id, :ownerId, :type, :s3Url, :filename, :contentType, :size, :metadata, :flagged, :createdAt)
	`, m)
	if pg.IsUniqueViolation(err) {
		return blob.ErrExists
	}
	return err
}

func (s *store) GetBlob(ctx context.Context, id model.BlobID) (*blob.Blob, error) {
	var m blobModel
	query := `SELECT "id", "ownerId", "type", "s3Url", "filename", "contentType", "size", "metadata", "flagged", "createdAt" FROM ` + blobTable + ` WHERE "id" = $1`
	err := s.db.GetContext(ctx, &m, query, pg.Encode(id.Bytes(), pg.Base58))
	if err == sql.ErrNoRows {
		return nil, blob.ErrNotFound
	} else if err != nil {
		return nil, err
	}

	return fromBlobModel(&m)
}

func (s *store) SetFlagged(ctx context.Context, id model.BlobID, flagged bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE `+blobTable+` SET "flagged" = $1 WHERE "id" = $2`, flagged, pg.Encode(id.Bytes(), pg.Base58))
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return blob.ErrNotFound
	}
	return nil
}
