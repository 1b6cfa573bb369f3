package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/blueprint-hub/hub-server/blueprint"
	"github.com/blueprint-hub/hub-server/model"
	"github.com/blueprint-hub/hub-server/query"
)

type store struct {
	mu         sync.RWMutex
	blueprints map[model.BlueprintID]*blueprint.Blueprint
}

func NewInMemory() blueprint.Store {
	return &store{
		blueprints: make(map[model.BlueprintID]*blueprint.Blueprint),
	}
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blueprints = make(map[model.BlueprintID]*blueprint.Blueprint)
}

func (s *store) CreateBlueprint(_ context.Context, b *blueprint.Blueprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blueprints[b.ID]; ok {
		return blueprint.ErrExists
	}
	s.blueprints[b.ID] = b.Clone()
	return nil
}

func (s *store) GetBlueprint(_ context.Context, id model.BlueprintID) (*blueprint.Blueprint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blueprints[id]
	if !ok {
		return nil, blueprint.ErrNotFound
	}
	return b.Clone(), nil
}

func (s *store) UpdateBlueprint(_ context.Context, b *blueprint.Blueprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.blueprints[b.ID]
	if !ok {
		return blueprint.ErrNotFound
	}

	existing.Title = b.Title
	existing.Description = b.Description
	existing.Status = b.Status
	existing.ImageIDs = append([]model.BlobID(nil), b.ImageIDs...)
	existing.UpdatedAt = b.UpdatedAt
	return nil
}

func (s *store) SetStatus(_ context.Context, id model.BlueprintID, status blueprint.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.blueprints[id]
	if !ok {
		return blueprint.ErrNotFound
	}
	b.Status = status
	return nil
}

func (s *store) ListByStatus(_ context.Context, status blueprint.Status, opts ...query.Option) ([]*blueprint.Blueprint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	queryOpts := query.ApplyOptions(opts...)

	var matched []*blueprint.Blueprint
	for _, b := range s.blueprints {
		if b.Status == status {
			matched = append(matched, b.Clone())
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if queryOpts.Order == query.Descending {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	if len(matched) > queryOpts.Limit {
		matched = matched[:queryOpts.Limit]
	}
	return matched, nil
}
