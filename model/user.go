package model

import (
	"fmt"

	"github.com/google/uuid"
)

// UserID identifies an account.
type UserID uuid.UUID

func GenerateUserID() (UserID, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return UserID{}, err
	}

	return UserID(id), nil
}

func MustGenerateUserID() UserID {
	id, err := GenerateUserID()
	if err != nil {
		panic(fmt.Sprintf("failed to generate user id: %v", err))
	}

	return id
}

func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(id), nil
}

func (id UserID) String() string {
	return uuid.UUID(id).String()
}

func (id UserID) Bytes() []byte {
	return id[:]
}

func UserIDFromBytes(b []byte) (UserID, error) {
	id, err := uuid.FromBytes(b)
	if err != nil {
		return UserID{}, err
	}
	return UserID(id), nil
}

func UserIDString(id UserID) string {
	return id.String()
}
