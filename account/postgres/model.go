package postgres

import (
	"database/sql"
	"time"

	pgutil "github.com/blueprint-hub/hub-server/database/postgres"

	"github.com/blueprint-hub/hub-server/account"
	"github.com/blueprint-hub/hub-server/model"
)

const userTable = "hub_users"

const allUserFields = `"id", "username", "email", "isAdmin", "createdAt", "updatedAt"`

// userModel maps to the hub_users table
type userModel struct {
	ID        string         `db:"id"`
	Username  string         `db:"username"`
	Email     sql.NullString `db:"email"`
	IsAdmin   bool           `db:"isAdmin"`
	CreatedAt time.Time      `db:"createdAt"`
	UpdatedAt time.Time      `db:"updatedAt"`
}

func toUserModel(user *account.User) *userModel {
	return &userModel{
		ID:        pgutil.Encode(user.ID.Bytes()),
		Username:  user.Username,
		Email:     pgutil.NullString(&user.Email),
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt,
		UpdatedAt: time.Now(),
	}
}

func fromUserModel(m *userModel) (*account.User, error) {
	decoded, err := pgutil.Decode(m.ID)
	if err != nil {
		return nil, err
	}
	userID, err := model.UserIDFromBytes(decoded)
	if err != nil {
		return nil, err
	}

	var email string
	if v := pgutil.FromNullString(m.Email); v != nil {
		email = *v
	}

	return &account.User{
		ID:        userID,
		Username:  m.Username,
		Email:     email,
		IsAdmin:   m.IsAdmin,
		CreatedAt: m.CreatedAt,
	}, nil
}
