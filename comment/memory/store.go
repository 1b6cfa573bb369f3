package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/blueprint-hub/hub-server/comment"
	"github.com/blueprint-hub/hub-server/model"
	"github.com/blueprint-hub/hub-server/query"
)

type store struct {
	mu       sync.RWMutex
	comments map[model.CommentID]*comment.Comment
}

func NewInMemory() comment.Store {
	return &store{
		comments: make(map[model.CommentID]*comment.Comment),
	}
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.comments = make(map[model.CommentID]*comment.Comment)
}

func (s *store) CreateComment(_ context.Context, c *comment.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[c.ID]; ok {
		return comment.ErrExists
	}
	s.comments[c.ID] = c.Clone()
	return nil
}

func (s *store) GetComment(_ context.Context, id model.CommentID) (*comment.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, comment.ErrNotFound
	}
	return c.Clone(), nil
}

func (s *store) SetApproved(_ context.Context, id model.CommentID, approved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return comment.ErrNotFound
	}
	c.IsApproved = approved
	return nil
}

func (s *store) GetComments(_ context.Context, blueprintID model.BlueprintID, approvedOnly bool, opts ...query.Option) ([]*comment.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	queryOpts := query.ApplyOptions(opts...)

	var matched []*comment.Comment
	for _, c := range s.comments {
		if c.BlueprintID != blueprintID {
			continue
		}
		if approvedOnly && !c.IsApproved {
			continue
		}
		matched = append(matched, c.Clone())
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
