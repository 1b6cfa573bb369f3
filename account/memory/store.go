package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/blueprint-hub/hub-server/account"
	"github.com/blueprint-hub/hub-server/model"
)

type memory struct {
	sync.Mutex

	users map[model.UserID]*account.User

	// usernames maps a username to its owner, enforcing uniqueness.
	usernames map[string]model.UserID
}

func NewInMemory() account.Store {
	return &memory{
		users:     make(map[model.UserID]*account.User),
		usernames: make(map[string]model.UserID),
	}
}

func (m *memory) reset() {
	m.Lock()
	defer m.Unlock()

	m.users = make(map[model.UserID]*account.User)
	m.usernames = make(map[string]model.UserID)
}

func (m *memory) CreateUser(_ context.Context, user *account.User) error {
	m.Lock()
	defer m.Unlock()

	if _, ok := m.users[user.ID]; ok {
		return account.ErrExists
	}
	if _, ok := m.usernames[user.Username]; ok {
		return account.ErrExists
	}

	m.users[user.ID] = user.Clone()
	m.usernames[user.Username] = user.ID
	return nil
}

func (m *memory) GetUser(_ context.Context, id model.UserID) (*account.User, error) {
	m.Lock()
	defer m.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, account.ErrNotFound
	}
	return user.Clone(), nil
}

func (m *memory) GetAdmins(_ context.Context) ([]*account.User, error) {
	m.Lock()
	defer m.Unlock()

	var admins []*account.User
	for _, user := range m.users {
		if user.IsAdmin {
			admins = append(admins, user.Clone())
		}
	}

	sort.Slice(admins, func(i, j int) bool {
		return admins[i].CreatedAt.Before(admins[j].CreatedAt)
	})
	return admins, nil
}

func (m *memory) SetAdmin(_ context.Context, id model.UserID, isAdmin bool) error {
	m.Lock()
	defer m.Unlock()

	user, ok := m.users[id]
	if !ok {
		return account.ErrNotFound
	}
	user.IsAdmin = isAdmin
	return nil
}
