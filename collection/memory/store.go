package memory

import (
	"context"
	"sync"

	"github.com/blueprint-hub/hub-server/collection"
	"github.com/blueprint-hub/hub-server/model"
)

type store struct {
	mu          sync.RWMutex
	collections map[model.CollectionID]*collection.Collection
}

func NewInMemory() collection.Store {
	return &store{
		collections: make(map[model.CollectionID]*collection.Collection),
	}
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collections = make(map[model.CollectionID]*collection.Collection)
}

func (s *store) CreateCollection(_ context.Context, c *collection.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[c.ID]; ok {
		return collection.ErrExists
	}
	s.collections[c.ID] = c.Clone()
	return nil
}

func (s *store) GetCollection(_ context.Context, id model.CollectionID) (*collection.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[id]
	if !ok {
		return nil, collection.ErrNotFound
	}
	return c.Clone(), nil
}

func (s *store) UpdateCollection(_ context.Context, c *collection.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.collections[c.ID]
	if !ok {
		return collection.ErrNotFound
	}

	existing.Title = c.Title
	existing.Description = c.Description
	existing.Status = c.Status
	existing.BlueprintIDs = append([]model.BlueprintID(nil), c.BlueprintIDs...)
	existing.UpdatedAt = c.UpdatedAt
	return nil
}
