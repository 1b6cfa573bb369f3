package memory

import (
	"context"
	"sync"

	"github.com/blueprint-hub/hub-server/blob"
	"github.com/blueprint-hub/hub-server/model"
)

type store struct {
	mu   sync.RWMutex
	data map[model.BlobID]*blob.Blob
}

func NewInMemory() blob.Store {
	return &store{
		data: make(map[model.BlobID]*blob.Blob),
	}
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[model.BlobID]*blob.Blob)
}

func (s *store) CreateBlob(_ context.Context, b *blob.Blob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.data[b.ID]; found {
		return blob.ErrExists
	}
	s.data[b.ID] = b.Clone()
	return nil
}

func (s *store) GetBlob(_ context.Context, id model.BlobID) (*blob.Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, found := s.data[id]
	if !found {
		return nil, blob.ErrNotFound
	}
	return b.Clone(), nil
}

func (s *store) SetFlagged(_ context.Context, id model.BlobID, flagged bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, found := s.data[id]
	if !found {
		return blob.ErrNotFound
	}
	b.Flagged = flagged
	return nil
}
