package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	pg "github.com/blueprint-hub/hub-server/database/postgres"

	"github.com/blueprint-hub/hub-server/account"
	"github.com/blueprint-hub/hub-server/model"
)

type pgStore struct {
	db *sqlx.DB
}

func NewInPostgres(db *sql.DB) account.Store {
	return &pgStore{
		db: sqlx.NewDb(db, "pgx"),
	}
}

func (s *pgStore) reset() {
	_, err := s.db.Exec(`DELETE FROM ` + userTable)
	if err != nil {
		panic(err)
	}
}

func (s *pgStore) CreateUser(ctx context.Context, user *account.User) error {
	m := toUserModel(user)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO `+userTable+` (`+allUserFields+`)
		VALUES (:id, :username, :email, :isAdmin, :createdAt, :updatedAt)
	`, m)
	if pg.IsUniqueViolation(err) {
		return account.ErrExists
	}
	return err
}

func (s *pgStore) GetUser(ctx context.Context, id model.UserID) (*account.User, error) {
	var m userModel
	query := `SELECT ` + allUserFields + ` FROM ` + userTable + ` WHERE "id" = $1`
	err := s.db.GetContext(ctx, &m, query, pg.Encode(id.Bytes()))
	if err == sql.ErrNoRows {
		return nil, account.ErrNotFound
	} else if err != nil {
		return nil, err
	}

	return fromUserModel(&m)
}

func (s *pgStore) GetAdmins(ctx context.Context) ([]*account.User, error) {
	var models []userModel
	query := `SELECT ` + allUserFields + ` FROM ` + userTable + ` WHERE "isAdmin" ORDER BY "createdAt" ASC`
	if err := s.db.SelectContext(ctx, &models, query); err != nil {
		return nil, err
	}

	admins := make([]*account.User, 0, len(models))
	for i := range models {
		user, err := fromUserModel(&models[i])
		if err != nil {
			return nil, err
		}
		admins = append(admins, user)
	}
	return admins, nil
}

func (s *pgStore) SetAdmin(ctx context.Context, id model.UserID, isAdmin bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE `+userTable+` SET "isAdmin" = $1, "updatedAt" = $2 WHERE "id" = $3`,
		isAdmin, time.Now(), pg.Encode(id.Bytes()),
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return account.ErrNotFound
	}
	return nil
}
